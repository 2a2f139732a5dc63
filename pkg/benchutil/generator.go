// Package benchutil provides synthetic archive inputs for benchmarks and
// testing.
package benchutil

import (
	"fmt"
	"math/rand"
	"os"
	"testing"

	"github.com/eunmann/micropak/pkg/pakbuild"
)

// BenchmarkSeed is the default seed for reproducible generation.
const BenchmarkSeed = 42

// BenchmarkSizes are file counts for quick benchmark runs.
var BenchmarkSizes = []int{100, 1000, 10000}

// SkipIfNoLongBench skips b unless MICROPAK_LONG_BENCH=1.
func SkipIfNoLongBench(b *testing.B) {
	b.Helper()
	if os.Getenv("MICROPAK_LONG_BENCH") != "1" {
		b.Skip("set MICROPAK_LONG_BENCH=1 to run")
	}
}

// GeneratorConfig configures synthetic file generation.
type GeneratorConfig struct {
	// NumFiles is the number of files to generate.
	NumFiles int
	// Fanout is the number of distinct names per directory level.
	Fanout int
	// MaxDepth is the maximum directory depth.
	MaxDepth int
	// MaxSize bounds file contents in bytes.
	MaxSize int
	// WideNames makes about one path in ten contain non-ASCII characters.
	WideNames bool
	// Seed for reproducible generation. 0 = BenchmarkSeed.
	Seed int64
}

// DefaultConfig returns a game-asset-like tree of small files.
func DefaultConfig(numFiles int) GeneratorConfig {
	return GeneratorConfig{
		NumFiles:  numFiles,
		Fanout:    12,
		MaxDepth:  5,
		MaxSize:   16 * 1024,
		WideNames: true,
		Seed:      BenchmarkSeed,
	}
}

// Generator generates synthetic archive inputs.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// NewGenerator creates a new generator.
func NewGenerator(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = BenchmarkSeed
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Generate returns NumFiles files with unique paths, in generation order.
func (g *Generator) Generate() []pakbuild.InputFile {
	files := make([]pakbuild.InputFile, 0, g.cfg.NumFiles)
	seen := make(map[string]struct{}, g.cfg.NumFiles)

	for len(files) < g.cfg.NumFiles {
		path := g.generatePath(len(files))
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		files = append(files, pakbuild.InputFile{Path: path, Data: g.generateData()})
	}

	return files
}

var (
	categories = []string{"textures", "sounds", "maps", "ui", "shaders", "config", "locale"}
	wideWords  = []string{"café", "日本語", "größe", "ñandú", "emoji_🎮"}
	extensions = []string{".png", ".ogg", ".json", ".txt", ".bin", ".glsl"}
)

func (g *Generator) generatePath(i int) string {
	depth := 1 + g.rng.Intn(max(g.cfg.MaxDepth, 1))

	path := ""
	for d := 0; d < depth; d++ {
		if d == 0 {
			path += categories[g.rng.Intn(len(categories))] + "/"
			continue
		}
		path += fmt.Sprintf("%c%d/", 'a'+rune(g.rng.Intn(26)), g.rng.Intn(max(g.cfg.Fanout, 1)))
	}

	name := fmt.Sprintf("asset_%06d", i)
	if g.cfg.WideNames && g.rng.Intn(10) == 0 {
		name = wideWords[g.rng.Intn(len(wideWords))] + "_" + name
	}
	return path + name + extensions[g.rng.Intn(len(extensions))]
}

func (g *Generator) generateData() []byte {
	// 5% empty files.
	if g.cfg.MaxSize <= 0 || g.rng.Intn(20) == 0 {
		return nil
	}
	data := make([]byte, 1+g.rng.Intn(g.cfg.MaxSize))
	g.rng.Read(data)
	return data
}

// TotalSize returns the sum of file sizes.
func TotalSize(files []pakbuild.InputFile) int64 {
	var n int64
	for _, f := range files {
		n += int64(len(f.Data))
	}
	return n
}
