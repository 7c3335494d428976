package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ctessum/geom"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/isochrone-analysis/analysis"
	"github.com/theoremus-urban-solutions/isochrone-analysis/batch"
	"github.com/theoremus-urban-solutions/isochrone-analysis/config"
	"github.com/theoremus-urban-solutions/isochrone-analysis/geocode"
	"github.com/theoremus-urban-solutions/isochrone-analysis/geometry"
	"github.com/theoremus-urban-solutions/isochrone-analysis/gtfsclean"
	"github.com/theoremus-urban-solutions/isochrone-analysis/internal"
	"github.com/theoremus-urban-solutions/isochrone-analysis/isochrone"
	"github.com/theoremus-urban-solutions/isochrone-analysis/output"
	"github.com/theoremus-urban-solutions/isochrone-analysis/points"
	"github.com/theoremus-urban-solutions/isochrone-analysis/routing"
)

const timeLayout = "2006-01-02T15:04"

var (
	cfgFile string
	quiet   bool

	originsFile      string
	destinationsFile string
	rowFrom          int
	rowTo            int
	departAt         string
	outFile          string
	failuresFile     string

	pointsFile string
	inFile     string
	feedFile   string
	areaFile   string
)

var rootCmd = &cobra.Command{
	Use:   "isoanalysis",
	Short: "Travel-time analysis against a multimodal routing engine",
	Long: `Queries an external routing engine for isochrones and point-to-point
plans, and post-processes the responses into travel-time matrices,
polygon intersections, and failure reports.`,
	SilenceUsage: true,
}

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Build an origin/destination travel-time matrix from isochrones",
	RunE:  runMatrix,
}

var intersectCmd = &cobra.Command{
	Use:   "intersect",
	Short: "Intersect the largest isochrone of every point",
	RunE:  runIntersect,
}

var tripMatrixCmd = &cobra.Command{
	Use:   "trip-matrix",
	Short: "Build a travel-time matrix from point-to-point plan queries",
	RunE:  runTripMatrix,
}

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Resolve postcode-only points to coordinates",
	RunE:  runGeocode,
}

var gtfsCleanCmd = &cobra.Command{
	Use:   "gtfs-clean",
	Short: "Report duplicate trips and out-of-area stops in a GTFS feed",
	RunE:  runGTFSClean,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file path (default config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress per-item progress lines")

	for _, cmd := range []*cobra.Command{matrixCmd, tripMatrixCmd} {
		cmd.Flags().StringVar(&originsFile, "origins", "", "Origins file (CSV or GeoJSON)")
		cmd.Flags().StringVar(&destinationsFile, "destinations", "", "Destinations file (CSV or GeoJSON)")
		cmd.Flags().StringVar(&failuresFile, "failures", "failures.csv", "Failure report output path")
		_ = cmd.MarkFlagRequired("origins")
		_ = cmd.MarkFlagRequired("destinations")
	}
	matrixCmd.Flags().IntVar(&rowFrom, "from", 0, "First origin row to process")
	matrixCmd.Flags().IntVar(&rowTo, "to", -1, "One past the last origin row (-1 for all)")
	matrixCmd.Flags().StringVar(&outFile, "out", "matrix.csv", "Matrix output path")
	tripMatrixCmd.Flags().StringVar(&outFile, "out", "trip-matrix.csv", "Matrix output path")

	intersectCmd.Flags().StringVar(&pointsFile, "points", "", "Points file (CSV or GeoJSON)")
	intersectCmd.Flags().StringVar(&outFile, "out", "intersection.geojson", "Intersection output path")
	_ = intersectCmd.MarkFlagRequired("points")

	geocodeCmd.Flags().StringVar(&inFile, "in", "", "Points file with postcodes (CSV)")
	geocodeCmd.Flags().StringVar(&outFile, "out", "geocoded.csv", "Resolved points output path")
	_ = geocodeCmd.MarkFlagRequired("in")

	gtfsCleanCmd.Flags().StringVar(&feedFile, "feed", "", "GTFS feed (zip or directory)")
	gtfsCleanCmd.Flags().StringVar(&areaFile, "area", "", "Study area polygon (GeoJSON, optional)")
	_ = gtfsCleanCmd.MarkFlagRequired("feed")

	for _, cmd := range []*cobra.Command{matrixCmd, intersectCmd, tripMatrixCmd} {
		cmd.Flags().StringVar(&departAt, "at", "", "Departure time, e.g. 2026-09-01T08:00 (default now)")
	}

	rootCmd.AddCommand(matrixCmd, intersectCmd, tripMatrixCmd, geocodeCmd, gtfsCleanCmd)
}

func main() {
	internal.InitLogging()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.AppConfig, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.Load()
}

func loadPoints(path string) ([]points.Point, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return points.LoadGeoJSON(path)
	default:
		return points.LoadCSV(path)
	}
}

func parseDepartAt() (time.Time, error) {
	if departAt == "" {
		return time.Now(), nil
	}
	at, err := time.ParseInLocation(timeLayout, departAt, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing --at %q (want %s): %w", departAt, timeLayout, err)
	}
	return at, nil
}

func newCheckpointer(cfg *config.AppConfig) (analysis.CheckpointWriter, error) {
	if cfg.Checkpoint.Every <= 0 {
		return nil, nil
	}
	cp, err := output.NewCheckpointer(cfg.Checkpoint.Dir)
	if err != nil {
		return nil, fmt.Errorf("preparing checkpoint dir: %w", err)
	}
	log.Printf("checkpointing to %s every %d origins", cp.MatrixPath(), cfg.Checkpoint.Every)
	return cp, nil
}

func writeFile(path string, fill func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func runMatrix(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	at, err := parseDepartAt()
	if err != nil {
		return err
	}

	origins, err := loadPoints(originsFile)
	if err != nil {
		return err
	}
	origins, err = points.Slice(origins, rowFrom, rowTo)
	if err != nil {
		return err
	}
	destinations, err := loadPoints(destinationsFile)
	if err != nil {
		return err
	}
	log.Printf("matrix run: %d origins, %d destinations, cutoffs %v",
		len(origins), len(destinations), cfg.Analysis.CutoffsMin)

	checkpoint, err := newCheckpointer(cfg)
	if err != nil {
		return err
	}

	client := routing.NewClient(cfg.Routing.BaseURL, time.Duration(cfg.Routing.TimeoutMS)*time.Millisecond)
	agg := analysis.NewAggregator(client, geometry.NewService())
	matrix, failures, runErr := agg.Run(cmd.Context(), origins, destinations, analysis.AggregatorOptions{
		Cutoffs:           cfg.Analysis.CutoffsMin,
		QueryTime:         at,
		Params:            routing.ParamsFromConfig(cfg.Routing),
		SimplifyTolerance: cfg.Analysis.SimplifyTolerance,
		CheckpointEvery:   cfg.Checkpoint.Every,
		Checkpoint:        checkpoint,
		Runner:            &batch.Runner{Quiet: quiet},
	})
	if runErr != nil {
		// The partial matrix is still worth flushing on interrupt.
		log.Printf("run aborted (%v); writing %d completed rows", runErr, matrix.Len())
	}

	if err := writeFile(outFile, func(f *os.File) error {
		return output.WriteMatrixCSV(f, matrix)
	}); err != nil {
		return err
	}
	if err := writeFile(failuresFile, func(f *os.File) error {
		return output.WriteFailuresCSV(f, failures)
	}); err != nil {
		return err
	}
	log.Printf("wrote %s and %s", outFile, failuresFile)
	return runErr
}

func runIntersect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	at, err := parseDepartAt()
	if err != nil {
		return err
	}
	pts, err := loadPoints(pointsFile)
	if err != nil {
		return err
	}

	client := routing.NewClient(cfg.Routing.BaseURL, time.Duration(cfg.Routing.TimeoutMS)*time.Millisecond)
	svc := geometry.NewService()
	engine := analysis.NewIntersectionEngine(svc)
	params := routing.ParamsFromConfig(cfg.Routing)
	failures := analysis.NewFailureSet()

	tolerance := cfg.Analysis.SimplifyTolerance
	if tolerance == 0 {
		tolerance = isochrone.DefaultSimplifyTolerance
	}

	_, runErr := batch.ForEach(cmd.Context(), &batch.Runner{Quiet: quiet}, pts, func(p points.Point) batch.Outcome {
		queryTime := routing.QueryTimeFor(p, at)
		res, reqErr := client.RequestIsochrone(cmd.Context(), p, cfg.Analysis.CutoffsMin, queryTime, params.ForPoint(p))
		if reqErr != nil {
			if cmd.Context().Err() != nil {
				return batch.Failure
			}
			failures.Add(p.ID, reqErr.Error())
			failures.LogExclusion(p.ID, reqErr.Error(), len(pts))
			return batch.Failure
		}
		ps, parseErr := isochrone.Parse(res, p, queryTime, cfg.Analysis.CutoffsMin, svc, tolerance)
		if parseErr != nil {
			failures.Add(p.ID, parseErr.Error())
			failures.LogExclusion(p.ID, parseErr.Error(), len(pts))
			return batch.Failure
		}
		engine.Accumulate(ps)
		return batch.Success
	})
	if runErr != nil {
		return runErr
	}

	engine.ReportResult()
	if failures.Len() > 0 {
		log.Print(failures.Report(len(pts)))
	}
	if err := writeFile(outFile, func(f *os.File) error {
		return output.WriteIntersectionGeoJSON(f, engine.Result(), engine.Union())
	}); err != nil {
		return err
	}
	log.Printf("wrote %s", outFile)
	return nil
}

func runTripMatrix(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	at, err := parseDepartAt()
	if err != nil {
		return err
	}
	origins, err := loadPoints(originsFile)
	if err != nil {
		return err
	}
	destinations, err := loadPoints(destinationsFile)
	if err != nil {
		return err
	}
	log.Printf("trip matrix run: %d origins, %d destinations, max pair distance %.0f km",
		len(origins), len(destinations), cfg.Analysis.MaxPairDistanceKM)

	checkpoint, err := newCheckpointer(cfg)
	if err != nil {
		return err
	}

	client := routing.NewClient(cfg.Routing.BaseURL, time.Duration(cfg.Routing.TimeoutMS)*time.Millisecond)
	matrix, failures, runErr := analysis.PairMatrix(cmd.Context(), client, origins, destinations, analysis.PairMatrixOptions{
		QueryTime:         at,
		Params:            routing.ParamsFromConfig(cfg.Routing),
		MaxPairDistanceKM: cfg.Analysis.MaxPairDistanceKM,
		CheckpointEvery:   cfg.Checkpoint.Every,
		Checkpoint:        checkpoint,
		Runner:            &batch.Runner{Quiet: quiet},
	})
	if runErr != nil {
		log.Printf("run aborted (%v); writing %d completed rows", runErr, matrix.Len())
	}

	if err := writeFile(outFile, func(f *os.File) error {
		return output.WriteMatrixCSV(f, matrix)
	}); err != nil {
		return err
	}
	if err := writeFile(failuresFile, func(f *os.File) error {
		return output.WriteFailuresCSV(f, failures)
	}); err != nil {
		return err
	}
	log.Printf("wrote %s and %s", outFile, failuresFile)
	return runErr
}

func runGeocode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Geocoder.PrimaryURL == "" {
		return fmt.Errorf("geocoder.primaryURL is not configured")
	}
	pts, err := loadPoints(inFile)
	if err != nil {
		return err
	}

	var fallback geocode.Provider
	if cfg.Geocoder.FallbackURL != "" {
		fallback = geocode.NewNominatim(cfg.Geocoder.FallbackURL)
	}
	g := geocode.New(geocode.NewPostcodesIO(cfg.Geocoder.PrimaryURL), fallback)

	resolved, unresolved, err := g.ResolveAll(cmd.Context(), pts)
	if err != nil {
		return err
	}
	if len(unresolved) > 0 {
		log.Printf("%d out of %d points could not be geocoded: %s",
			len(unresolved), len(pts), strings.Join(unresolved, ", "))
	}
	if err := writeFile(outFile, func(f *os.File) error {
		return output.WritePointsCSV(f, resolved)
	}); err != nil {
		return err
	}
	log.Printf("wrote %d points to %s", len(resolved), outFile)
	return nil
}

func runGTFSClean(cmd *cobra.Command, args []string) error {
	feed, err := gtfsclean.Load(feedFile)
	if err != nil {
		return err
	}

	svc := geometry.NewService()
	cleaner := gtfsclean.NewCleaner(svc, nil)
	if areaFile != "" {
		area, err := loadStudyArea(areaFile)
		if err != nil {
			return err
		}
		cleaner.StudyArea = area
	}

	stats := cleaner.Run(feed)
	fmt.Println(stats)
	return nil
}

func loadStudyArea(path string) (geom.Polygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing study area %s: %w", path, err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("study area %s contains no features", path)
	}
	return geometry.FromOrb(fc.Features[0].Geometry)
}
