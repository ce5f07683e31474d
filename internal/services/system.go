package services

import (
	"bufio"
	"context"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

const (
	IntegrationActive     = "active"
	IntegrationConfigured = "configured"
	IntegrationInactive   = "inactive"
)

// IntegrationProbe describes one external dependency without contacting it.
type IntegrationProbe struct {
	Name        string
	Credentials map[string]bool
	Initialized bool
}

type IntegrationStatus struct {
	Name        string   `json:"name"`
	Status      string   `json:"status"`
	Present     []string `json:"present"`
	Missing     []string `json:"missing"`
	Initialized bool     `json:"initialized"`
}

// ClassifyIntegration: all credentials and a live client is active, some
// credentials is configured, none is inactive.
func ClassifyIntegration(p IntegrationProbe) IntegrationStatus {
	st := IntegrationStatus{Name: p.Name, Initialized: p.Initialized, Present: []string{}, Missing: []string{}}
	for name, ok := range p.Credentials {
		if ok {
			st.Present = append(st.Present, name)
		} else {
			st.Missing = append(st.Missing, name)
		}
	}
	sort.Strings(st.Present)
	sort.Strings(st.Missing)
	switch {
	case len(st.Present) > 0 && len(st.Missing) == 0 && p.Initialized:
		st.Status = IntegrationActive
	case len(st.Present) > 0 || p.Initialized:
		st.Status = IntegrationConfigured
	default:
		st.Status = IntegrationInactive
	}
	return st
}

type SystemConfig struct {
	AppEnv        string
	Version       string
	DBDriver      string
	CodeStatsRoot string
	StartedAt     time.Time
	Integrations  func() []IntegrationProbe
	// Models are the tables reported by the schema endpoint.
	Models []any
}

type MemoryInfo struct {
	AllocBytes  uint64 `json:"allocBytes"`
	SysBytes    uint64 `json:"sysBytes"`
	HeapObjects uint64 `json:"heapObjects"`
	NumGC       uint32 `json:"numGc"`
}

type EnvironmentInfo struct {
	AppEnv        string     `json:"appEnv"`
	Version       string     `json:"version"`
	GoVersion     string     `json:"goVersion"`
	OS            string     `json:"os"`
	Arch          string     `json:"arch"`
	NumCPU        int        `json:"numCpu"`
	Goroutines    int        `json:"goroutines"`
	Memory        MemoryInfo `json:"memory"`
	Hostname      string     `json:"hostname"`
	PID           int        `json:"pid"`
	UptimeSeconds int64      `json:"uptimeSeconds"`
	DBDriver      string     `json:"dbDriver"`
}

type LineCounts struct {
	Total   int64 `json:"total"`
	Code    int64 `json:"code"`
	Blank   int64 `json:"blank"`
	Comment int64 `json:"comment"`
}

type HealthCheck struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
	Passed bool   `json:"passed"`
}

type CodingStats struct {
	Root              string           `json:"root"`
	TotalFiles        int64            `json:"totalFiles"`
	SourceFiles       int64            `json:"sourceFiles"`
	FilesByExtension  map[string]int64 `json:"filesByExtension"`
	Lines             LineCounts       `json:"lines"`
	Components        int              `json:"components"`
	AvgLinesPerSource float64          `json:"avgLinesPerSource"`
	HealthScore       int              `json:"healthScore"`
	HealthChecks      []HealthCheck    `json:"healthChecks"`
}

type ColumnInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primaryKey"`
}

type TableInfo struct {
	Name     string       `json:"name"`
	Columns  []ColumnInfo `json:"columns"`
	RowCount int64        `json:"rowCount"`
}

type DatabaseSchema struct {
	Driver string      `json:"driver"`
	Tables []TableInfo `json:"tables"`
}

type SystemService interface {
	Environment(ctx context.Context) *EnvironmentInfo
	Integrations(ctx context.Context) []IntegrationStatus
	CodingStats(ctx context.Context) (*CodingStats, error)
	DatabaseSchema(ctx context.Context) (*DatabaseSchema, error)
}

type systemService struct {
	db  *gorm.DB
	log *logger.Logger
	cfg SystemConfig
}

func NewSystemService(db *gorm.DB, log *logger.Logger, cfg SystemConfig) SystemService {
	if cfg.StartedAt.IsZero() {
		cfg.StartedAt = time.Now()
	}
	if cfg.CodeStatsRoot == "" {
		cfg.CodeStatsRoot = "."
	}
	return &systemService{db: db, log: log.With("service", "SystemService"), cfg: cfg}
}

func (ss *systemService) Environment(_ context.Context) *EnvironmentInfo {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	host, _ := os.Hostname()
	return &EnvironmentInfo{
		AppEnv:     ss.cfg.AppEnv,
		Version:    ss.cfg.Version,
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		NumCPU:     runtime.NumCPU(),
		Goroutines: runtime.NumGoroutine(),
		Memory: MemoryInfo{
			AllocBytes:  ms.Alloc,
			SysBytes:    ms.Sys,
			HeapObjects: ms.HeapObjects,
			NumGC:       ms.NumGC,
		},
		Hostname:      host,
		PID:           os.Getpid(),
		UptimeSeconds: int64(time.Since(ss.cfg.StartedAt).Seconds()),
		DBDriver:      ss.cfg.DBDriver,
	}
}

func (ss *systemService) Integrations(_ context.Context) []IntegrationStatus {
	if ss.cfg.Integrations == nil {
		return []IntegrationStatus{}
	}
	probes := ss.cfg.Integrations()
	out := make([]IntegrationStatus, 0, len(probes))
	for _, p := range probes {
		out = append(out, ClassifyIntegration(p))
	}
	return out
}

func (ss *systemService) CodingStats(ctx context.Context) (*CodingStats, error) {
	stats, err := ScanCode(ctx, ss.cfg.CodeStatsRoot)
	if err != nil {
		ss.log.Warn("Coding stats scan failed", "root", ss.cfg.CodeStatsRoot, "error", err)
		return nil, apierr.Internal(err)
	}
	return stats, nil
}

func (ss *systemService) DatabaseSchema(ctx context.Context) (*DatabaseSchema, error) {
	gdb := ss.db.WithContext(ctx)
	migrator := gdb.Migrator()
	out := &DatabaseSchema{Driver: ss.cfg.DBDriver, Tables: make([]TableInfo, 0, len(ss.cfg.Models))}
	for _, model := range ss.cfg.Models {
		stmt := &gorm.Statement{DB: gdb}
		if err := stmt.Parse(model); err != nil {
			return nil, err
		}
		table := TableInfo{Name: stmt.Schema.Table, Columns: []ColumnInfo{}}
		if !migrator.HasTable(model) {
			out.Tables = append(out.Tables, table)
			continue
		}
		cols, err := migrator.ColumnTypes(model)
		if err != nil {
			return nil, err
		}
		for _, c := range cols {
			nullable, _ := c.Nullable()
			pk, _ := c.PrimaryKey()
			table.Columns = append(table.Columns, ColumnInfo{
				Name:       c.Name(),
				Type:       strings.ToLower(c.DatabaseTypeName()),
				Nullable:   nullable,
				PrimaryKey: pk,
			})
		}
		if err := gdb.Unscoped().Model(model).Count(&table.RowCount).Error; err != nil {
			return nil, err
		}
		out.Tables = append(out.Tables, table)
	}
	sort.Slice(out.Tables, func(i, j int) bool { return out.Tables[i].Name < out.Tables[j].Name })
	return out, nil
}

var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"_examples":    true,
	"dist":         true,
	"build":        true,
}

// commentSyntax describes how a source extension marks comments. Block
// comments are the C-style /* ... */ form.
type commentSyntax struct {
	line  []string
	block bool
}

var (
	cStyle   = commentSyntax{line: []string{"//"}, block: true}
	hashOnly = commentSyntax{line: []string{"#"}}
)

var commentStyles = map[string]commentSyntax{
	".go":   cStyle,
	".js":   cStyle,
	".jsx":  cStyle,
	".ts":   cStyle,
	".tsx":  cStyle,
	".java": cStyle,
	".c":    cStyle,
	".h":    cStyle,
	".cpp":  cStyle,
	".rs":   cStyle,
	".css":  {block: true},
	".scss": cStyle,
	".py":   hashOnly,
	".rb":   hashOnly,
	".sh":   hashOnly,
	".sql":  {line: []string{"--"}},
}

var lintConfigs = []string{".golangci.yml", ".golangci.yaml", ".eslintrc", ".eslintrc.js", ".eslintrc.json", "eslint.config.js"}

const scanWorkers = 8

// ScanCode walks root and reports file, line and package counts plus a
// display-only health score.
func ScanCode(ctx context.Context, root string) (*CodingStats, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	stats := &CodingStats{Root: filepath.Base(abs), FilesByExtension: map[string]int64{}}
	var (
		sources   []string
		packages  = map[string]bool{}
		hasLint   bool
		hasTests  bool
		hasReadme bool
	)
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		name := d.Name()
		if d.IsDir() {
			if path != abs && skippedDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		stats.TotalFiles++
		ext := strings.ToLower(filepath.Ext(name))
		if ext == "" {
			ext = "(none)"
		}
		stats.FilesByExtension[ext]++

		switch {
		case strings.HasPrefix(strings.ToUpper(name), "README"):
			hasReadme = true
		case isLintConfig(name):
			hasLint = true
		}
		if strings.HasSuffix(name, "_test.go") || strings.Contains(name, ".test.") || strings.Contains(name, ".spec.") {
			hasTests = true
		}
		if ext == ".go" {
			packages[filepath.Dir(path)] = true
		}
		if _, ok := commentStyles[ext]; ok {
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scanWorkers)
	for _, path := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			counts, err := countLines(path)
			if err != nil {
				return err
			}
			mu.Lock()
			stats.Lines.Total += counts.Total
			stats.Lines.Code += counts.Code
			stats.Lines.Blank += counts.Blank
			stats.Lines.Comment += counts.Comment
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.SourceFiles = int64(len(sources))
	stats.Components = len(packages)
	if stats.SourceFiles > 0 {
		stats.AvgLinesPerSource = math.Round(float64(stats.Lines.Total)/float64(stats.SourceFiles)*10) / 10
	}
	stats.HealthChecks = []HealthCheck{
		{Name: "lint configuration", Weight: 25, Passed: hasLint},
		{Name: "tests present", Weight: 25, Passed: hasTests},
		{Name: "readme present", Weight: 10, Passed: hasReadme},
		{Name: "at least 5 components", Weight: 20, Passed: stats.Components >= 5},
		{Name: "average file length under 400 lines", Weight: 20, Passed: stats.SourceFiles > 0 && stats.AvgLinesPerSource <= 400},
	}
	for _, c := range stats.HealthChecks {
		if c.Passed {
			stats.HealthScore += c.Weight
		}
	}
	return stats, nil
}

func isLintConfig(name string) bool {
	for _, c := range lintConfigs {
		if name == c {
			return true
		}
	}
	return false
}

func countLines(path string) (LineCounts, error) {
	var c LineCounts
	f, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer f.Close()

	syntax := commentStyles[strings.ToLower(filepath.Ext(path))]
	inBlock := false
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		c.Total++
		switch {
		case line == "" && !inBlock:
			c.Blank++
		case inBlock:
			c.Comment++
			inBlock = !strings.Contains(line, "*/")
		case hasAnyPrefix(line, syntax.line):
			c.Comment++
		case syntax.block && strings.HasPrefix(line, "/*"):
			c.Comment++
			inBlock = !strings.Contains(line[2:], "*/")
		default:
			c.Code++
		}
	}
	return c, sc.Err()
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
