package main

import (
	"flag"
	"fmt"
	"os"

	"go-scm/config"
	"go-scm/pkg/scm"
	"go-scm/util/logger"
)

const demoFileSize = 1 << 20

func main() {
	configs := config.New()
	flag.StringVar(&configs.StoreConfig.Path, "file", configs.StoreConfig.Path, "backing file of the store")
	flag.BoolVar(&configs.StoreConfig.Reset, "reset", configs.StoreConfig.Reset, "discard prior contents")
	flag.Parse()

	// The store never creates or resizes files, the demo pre-sizes one.
	if err := ensureFile(configs.StoreConfig.Path, demoFileSize); err != nil {
		fatal(err)
	}

	store, err := scm.Open(configs.StoreConfig.Path, &scm.Options{
		Reset:   configs.StoreConfig.Reset,
		MapAddr: configs.StoreConfig.MapAddr,
	})
	if err != nil {
		fatal(err)
	}

	defer func() {
		if err := store.Close(); err != nil {
			logger.L.Errorf("error on closing store: %v", err)
		}
	}()

	fmt.Printf("opened %s: capacity=%d utilized=%d\n",
		configs.StoreConfig.Path, store.Capacity(), store.Utilized())

	addr, err := store.Strdup("hello, persistent world")
	if err != nil {
		fatal(err)
	}
	fmt.Printf("strdup at %#x -> %q\n", addr, store.StringAt(addr))

	raw, err := store.Alloc(64)
	if err != nil {
		fatal(err)
	}
	copy(store.BytesAt(raw, 64), "scratch block")
	fmt.Printf("alloc at %#x, utilized=%d\n", raw, store.Utilized())

	store.Free(raw)
	fmt.Printf("freed %#x, utilized stays %d\n", raw, store.Utilized())

	fmt.Println("run again without -reset to see utilization persist")
}

func ensureFile(path string, size int64) error {
	if info, err := os.Stat(path); err == nil {
		if !info.Mode().IsRegular() {
			return fmt.Errorf("%s exists and is not a regular file", path)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fatal(val interface{}) {
	fmt.Println(val)
	os.Exit(1)
}
