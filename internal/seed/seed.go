// Package seed generates synthetic directory entries and loads them into a
// directory. Generation runs on a fixed-size worker pool; loading resolves
// parent values to ids before inserting the entries.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// MaxCount bounds the number of entries generated in one call.
const MaxCount = 1_000_000

// ErrCountRange is returned for counts outside 0..MaxCount.
var ErrCountRange = errors.New("seed count out of range")

// Entry is one generated person with the parent values as text.
type Entry struct {
	Name       string
	Surname    string
	Patronymic string
	Street     string
	Building   string
	Apartment  int64
	Phone      int64
}

// Record returns the entry as a flat record keyed by the entry and parent
// data column names.
func (e Entry) Record() types.Record {
	return types.Record{
		"name":       e.Name,
		"surname":    e.Surname,
		"patronymic": e.Patronymic,
		"street":     e.Street,
		"building":   e.Building,
		"apartment":  e.Apartment,
		"phone":      e.Phone,
	}
}

// Options configures a Generator.
type Options struct {
	// Workers is the pool size; zero uses GOMAXPROCS.
	Workers int
	// Seed makes output reproducible; zero picks a random seed.
	Seed uint64
}

// Generator produces synthetic entries.
type Generator struct {
	workers int
	seed    uint64
}

// NewGenerator creates a generator from opts.
func NewGenerator(opts Options) *Generator {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Generator{workers: workers, seed: seed}
}

// Generate returns count entries. Work is split into one chunk per worker and
// each chunk draws from its own source, so a fixed seed gives the same
// output regardless of scheduling.
func (g *Generator) Generate(ctx context.Context, count int) ([]Entry, error) {
	if count < 0 || count > MaxCount {
		return nil, fmt.Errorf("%w: %d not in 0..%d", ErrCountRange, count, MaxCount)
	}

	out := make([]Entry, count)
	if count == 0 {
		return out, nil
	}

	chunks := min(g.workers, count)
	size := (count + chunks - 1) / chunks

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i := range chunks {
		start := i * size
		end := min(start+size, count)
		if start >= end {
			break
		}
		eg.Go(func() error {
			rng := rand.New(rand.NewPCG(g.seed, uint64(i)))
			for j := start; j < end; j++ {
				if j%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				out[j] = newEntry(rng)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func newEntry(rng *rand.Rand) Entry {
	g := gender(rng.IntN(2))

	e := Entry{
		Street:    pick(rng, streets),
		Building:  building(rng),
		Apartment: int64(rng.IntN(1000) + 1),
		Phone:     70_000_000_000 + rng.Int64N(10_000_000_000),
	}
	p := patronymicStems[rng.IntN(len(patronymicStems))]
	if g == male {
		e.Name = pick(rng, maleNames)
		e.Surname = pick(rng, surnameStems)
		e.Patronymic = p.male
	} else {
		e.Name = pick(rng, femaleNames)
		e.Surname = pick(rng, surnameStems) + "а"
		e.Patronymic = p.female
	}
	return e
}

// building returns a number in one of the formats "12", "12/3", "12Б" or
// "12 к.3".
func building(rng *rand.Rand) string {
	switch rng.IntN(4) {
	case 0:
		return strconv.Itoa(rng.IntN(200) + 1)
	case 1:
		return strconv.Itoa(rng.IntN(100)+1) + "/" + strconv.Itoa(rng.IntN(10)+1)
	case 2:
		return strconv.Itoa(rng.IntN(100)+1) + string(buildingLetters[rng.IntN(len(buildingLetters))])
	default:
		return strconv.Itoa(rng.IntN(100)+1) + " к." + strconv.Itoa(rng.IntN(5)+1)
	}
}

func pick(rng *rand.Rand, words []string) string {
	return words[rng.IntN(len(words))]
}

// Populate writes records shaped like Entry.Record into the directory. For
// every parent column of the entry table, values already stored are reused
// and each missing value is created once; the records are then inserted with
// the resolved ids. Each step is its own transaction, so a failure can leave
// parent rows without entries.
func Populate(ctx context.Context, dir types.Directory, records []types.Record, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if len(records) == 0 {
		return 0, nil
	}

	entries, err := dir.GetTable(types.TableEntries)
	if err != nil {
		return 0, err
	}

	linked := make([]types.Record, len(records))
	for i, r := range records {
		linked[i] = r.Clone()
	}

	for _, col := range entries.Def().Parents() {
		ids, err := resolveParent(ctx, dir, col.Parent, records)
		if err != nil {
			return 0, fmt.Errorf("resolving %s: %w", col.Parent.Table, err)
		}
		for _, r := range linked {
			r[col.Column] = ids[r.Text(col.Parent.DataColumn)]
			delete(r, col.Parent.DataColumn)
		}
		logger.Info("resolved parent values", slog.String("table", col.Parent.Table), slog.Int("distinct", len(ids)))
	}

	created, err := entries.Create(ctx, linked)
	if err != nil {
		return 0, fmt.Errorf("creating entries: %w", err)
	}
	logger.Info("populated directory", slog.Int("entries", len(created)))
	return len(created), nil
}

// resolveParent maps every distinct value of ref.DataColumn in records to a
// parent id, creating the values the table does not hold yet.
func resolveParent(ctx context.Context, dir types.Directory, ref *types.ParentReference, records []types.Record) (map[string]int64, error) {
	table, err := dir.GetTable(ref.Table)
	if err != nil {
		return nil, err
	}
	existing, err := table.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]int64, len(existing))
	for _, r := range existing {
		if id, ok := r.Int64(ref.IDColumn); ok {
			ids[r.Text(ref.DataColumn)] = id
		}
	}

	var missing []types.Record
	seen := map[string]bool{}
	for _, r := range records {
		v := r.Text(ref.DataColumn)
		if _, ok := ids[v]; ok || seen[v] {
			continue
		}
		seen[v] = true
		missing = append(missing, types.Record{ref.DataColumn: v})
	}

	if len(missing) == 0 {
		return ids, nil
	}
	created, err := table.Create(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, r := range created {
		if id, ok := r.Int64(ref.IDColumn); ok {
			ids[r.Text(ref.DataColumn)] = id
		}
	}
	return ids, nil
}
