// Package orchestrator drives a full validation run: load the city
// registry, load or fetch the OSM dataset, assign elements to cities,
// and reconstruct and validate each city's transit network
// (subways/validation.py::add_osm_elements_to_cities, validate_cities).
package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/transit-tools/subway-validator/config"
	"github.com/transit-tools/subway-validator/errors"
	"github.com/transit-tools/subway-validator/logging"
	"github.com/transit-tools/subway-validator/model"
	"github.com/transit-tools/subway-validator/osm"
	"github.com/transit-tools/subway-validator/osmsource"
	"github.com/transit-tools/subway-validator/recovery"
	"github.com/transit-tools/subway-validator/registry"
	"github.com/transit-tools/subway-validator/types"
)

// MaxCitiesWithoutOverpassFetch is the registry size above which a run
// without a local OSM dump is refused rather than hammering the public
// Overpass instance (spec.md §2 exit code 3).
const MaxCitiesWithoutOverpassFetch = 10

// DefaultOverpassAPI is the public Overpass instance queried when no
// local OSM file is supplied.
const DefaultOverpassAPI = "https://overpass-api.de/api/interpreter"

// Options configures a validation run.
type Options struct {
	CitiesPath       string
	OSMPath          string // local .osm.xml or Overpass JSON; empty triggers an Overpass fetch
	OverpassAPI      string
	Overground       bool
	RecoveryDataPath string
	ConcurrentCities int
	Config           *config.ValidatorConfig
}

// Result is the outcome of a validation run: the structured report plus
// the reconstructed cities, for output dispatch.
type Result struct {
	Report *types.ValidationReport
	Cities []*model.City
}

// ErrTooManyCitiesForFetch is returned when the registry names more
// cities than MaxCitiesWithoutOverpassFetch and no local OSM file was
// given, matching the CLI's exit code 3 (spec.md §2).
var ErrTooManyCitiesForFetch = fmt.Errorf("too many cities to fetch from Overpass in one run (max %d); supply --osm", MaxCitiesWithoutOverpassFetch)

// ErrNoCities is returned when the registry is empty, matching exit
// code 2 (spec.md §2).
var ErrNoCities = fmt.Errorf("no cities found in registry")

// Run executes a full validation pass against opts.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}

	descriptors, err := loadRegistry(opts.CitiesPath)
	if err != nil {
		return nil, err
	}
	if len(descriptors) == 0 {
		return nil, ErrNoCities
	}
	if opts.OSMPath == "" && len(descriptors) > MaxCitiesWithoutOverpassFetch {
		return nil, ErrTooManyCitiesForFetch
	}

	elements, err := loadElements(ctx, opts, descriptors)
	if err != nil {
		return nil, err
	}

	recoveryStore, err := loadRecovery(opts.RecoveryDataPath)
	if err != nil {
		return nil, err
	}

	cities := buildCities(descriptors, recoveryStore, opts.Overground)
	assignElements(cities, elements)

	processCities(cities, opts)

	report := &types.ValidationReport{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for _, c := range cities {
		report.Cities = append(report.Cities, c.Result())
	}

	return &Result{Report: report, Cities: cities}, nil
}

func loadRegistry(path string) ([]model.CityDescriptor, error) {
	f, err := os.Open(path) //nolint:gosec // path is operator-supplied via CLI flag
	if err != nil {
		return nil, errors.NewValidationError("REGISTRY_UNREADABLE", "could not open city registry").
			WithDetails(path).WithSeverity(types.CRITICAL).WithCause(err)
	}
	defer f.Close()
	descriptors, err := registry.Load(f)
	if err != nil {
		return nil, errors.NewValidationError("REGISTRY_MALFORMED", "could not parse city registry").
			WithDetails(path).WithSeverity(types.CRITICAL).WithCause(err)
	}
	return descriptors, nil
}

func loadElements(ctx context.Context, opts Options, descriptors []model.CityDescriptor) ([]*osm.Element, error) {
	var data []byte
	var fromXML bool

	if opts.OSMPath != "" {
		f, err := os.Open(opts.OSMPath) //nolint:gosec // path is operator-supplied via CLI flag
		if err != nil {
			return nil, fmt.Errorf("orchestrator: opening osm data %s: %w", opts.OSMPath, err)
		}
		defer f.Close()
		raw, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: reading osm data: %w", err)
		}
		data = raw
		fromXML = strings.HasSuffix(strings.ToLower(opts.OSMPath), ".xml") || strings.HasSuffix(strings.ToLower(opts.OSMPath), ".osm")
	} else {
		api := opts.OverpassAPI
		if api == "" {
			api = DefaultOverpassAPI
		}
		fetcher := osmsource.NewFetcher(api)
		bboxes := make([]model.BBox, len(descriptors))
		for i, d := range descriptors {
			bboxes[i] = d.BBox
		}
		modes := opts.Config.Modes.RapidTransit
		if opts.Overground {
			modes = append(append([]string(nil), modes...), opts.Config.Modes.Overground...)
		}
		logging.Info("fetching OSM data from Overpass", "cities", len(descriptors), "api", api)
		body, err := fetcher.FetchAll(ctx, opts.Overground, modes, bboxes)
		if err != nil {
			return nil, errors.NewValidationError("OVERPASS_FETCH_FAILED", "could not fetch OSM data from Overpass").
				WithDetails(api).WithSeverity(types.CRITICAL).WithCause(err)
		}
		data = body
	}

	var elements []*osm.Element
	var err error
	if fromXML {
		elements, err = osmsource.LoadXML(bytes.NewReader(data))
	} else {
		elements, err = osmsource.LoadOverpassJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("orchestrator: parsing osm data: %w", err)
	}

	osm.CalculateCenters(elements)
	return elements, nil
}

func loadRecovery(path string) (recovery.Lookup, error) {
	if path == "" {
		return recovery.NullStore{}, nil
	}
	store, err := recovery.LoadJSONStore(path)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: loading recovery data %s: %w", path, err)
	}
	return store, nil
}

func buildCities(descriptors []model.CityDescriptor, recoveryStore recovery.Lookup, overground bool) []*model.City {
	cities := make([]*model.City, len(descriptors))
	for i, d := range descriptors {
		c := model.NewCity(d)
		c.Recovery = recoveryStore
		c.Overground = overground
		cities[i] = c
	}
	return cities
}

// assignElements sorts every element into every city whose bbox
// contains it. An element can belong to more than one city's bbox
// (overlapping registry boxes near a border), mirroring
// subways/validation.py::add_osm_elements_to_cities: add filters on
// bbox containment alone, without deduplicating across cities.
func assignElements(cities []*model.City, elements []*osm.Element) {
	for _, el := range elements {
		if el.Center == nil {
			continue
		}
		for _, c := range cities {
			if c.Contains(el) {
				c.Add(el)
			}
		}
	}
}

// processCities reconstructs and validates every city's network,
// bounding concurrency the way the teacher's ZIP dataset runner bounds
// per-file worker goroutines.
func processCities(cities []*model.City, opts Options) {
	workerCount := opts.ConcurrentCities
	if workerCount <= 0 {
		workerCount = 4
	}
	if workerCount > len(cities) {
		workerCount = len(cities)
	}
	if workerCount == 0 {
		return
	}

	jobs := make(chan *model.City, len(cities))
	done := make(chan struct{}, len(cities))

	for w := 0; w < workerCount; w++ {
		go func() {
			for c := range jobs {
				processOneCity(c, opts)
				done <- struct{}{}
			}
		}()
	}

	for _, c := range cities {
		jobs <- c
	}
	close(jobs)

	for range cities {
		<-done
	}
}

func processOneCity(c *model.City, opts Options) {
	defer func() {
		if r := recover(); r != nil {
			critical := errors.NewCriticalValidationError("panic while processing city: %v", r)
			c.CriticalError(critical.Error(), nil)
		}
	}()

	start := time.Now()
	logging.GetDefaultLogger().CityValidationStart(c.Descriptor.Name)

	c.ExtractRoutes()
	if !c.Aborted() {
		c.Validate(opts.Config.Tolerances.AllowedStationsMismatch, opts.Config.Tolerances.AllowedTransfersMismatch)
	}

	logging.GetDefaultLogger().CityValidationComplete(
		c.Descriptor.Name, time.Since(start), c.IsGood(),
		len(c.Errors), len(c.Warnings), len(c.Notices),
	)
}
