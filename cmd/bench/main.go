package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/jsonpit"
	"github.com/aretw0/jsonpit/pkg/pit"
)

func main() {
	names := flag.Int("names", 1000, "Number of distinct record names")
	versions := flag.Int("versions", 10, "Versions written per name")
	writers := flag.Int("writers", 16, "Concurrent writer goroutines")
	codecName := flag.String("codec", "json", "Storage format: json, yaml or msgpack")
	keep := flag.Bool("keep", false, "Keep the benchmark pit after running")
	flag.Parse()

	codec, err := pit.CodecByName(*codecName)
	if err != nil {
		panic(err)
	}

	benchDir, err := os.MkdirTemp("", "jsonpit_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	dir := filepath.Join(benchDir, "Bench")
	p, err := jsonpit.Open(dir, jsonpit.WithLogger(logger), jsonpit.WithCodec(codec))
	if err != nil {
		panic(err)
	}

	// Every other version repeats the previous content, so half the writes
	// exercise the dedup path.
	total := *names * *versions
	fmt.Printf("Writing %d versions (%d names, %d writers)...\n", total, *names, *writers)
	jobs := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	added := 0
	startAdd := time.Now()
	for range *writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := 0
			for i := range jobs {
				name := fmt.Sprintf("rec/%05d", i%*names)
				it, err := jsonpit.NewItemFrom(name, map[string]any{
					"seq":   (i / *names) / 2,
					"venue": "bench",
				})
				if err != nil {
					panic(err)
				}
				ok, err := p.Add(it)
				if err != nil {
					panic(err)
				}
				if ok {
					n++
				}
			}
			mu.Lock()
			added += n
			mu.Unlock()
		}()
	}
	for i := range total {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	addDuration := time.Since(startAdd)

	startSave := time.Now()
	if err := p.Save(ctx, false); err != nil {
		panic(err)
	}
	saveDuration := time.Since(startSave)
	info, err := os.Stat(p.File())
	if err != nil {
		panic(err)
	}

	startOpen := time.Now()
	ro, err := jsonpit.Open(dir, jsonpit.WithReadOnly(true), jsonpit.WithCodec(codec))
	if err != nil {
		panic(err)
	}
	openDuration := time.Since(startOpen)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%s):\n", codec.Ext())
	fmt.Printf("  Add:  %v (%d stored, %d deduplicated)\n", addDuration, added, total-added)
	fmt.Printf("  Save: %v (%d bytes)\n", saveDuration, info.Size())
	fmt.Printf("  Open: %v (%d names)\n", openDuration, ro.Len())
	fmt.Printf("--------------------------------------------------\n")
}
