package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	translatable "github.com/goliatone/go-translatable"
	"github.com/goliatone/go-translatable/internal/seed"
)

func main() {
	driver := flag.String("driver", "sqlite", "storage driver: sqlite, postgres, mysql or empty for memory")
	dsn := flag.String("dsn", "file::memory:?cache=shared", "storage dsn")
	fixture := flag.String("fixture", "", "path to a posts fixture, defaults to the embedded demo")
	cache := flag.Bool("cache", false, "enable the repository cache")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := translatable.DefaultConfig()
	cfg.DefaultLocale = "en"
	cfg.Locales = []string{"en", "fr", "es"}
	cfg.Storage = translatable.StorageConfig{Driver: *driver, DSN: *dsn}
	if *driver == "" {
		cfg.Storage.DSN = ""
	}
	cfg.Cache.Enabled = *cache
	cfg.Features.Logger = true
	cfg.Features.Commands = true
	cfg.Logging = translatable.LoggingConfig{Provider: "gologger", Level: "info", Format: "console"}

	module, err := translatable.New(ctx, cfg)
	if err != nil {
		log.Fatalf("initialise module: %v", err)
	}
	defer module.Close()

	module.OnMissingTranslation(func(_ context.Context, evt translatable.NotFoundEvent) {
		fmt.Printf("  missing %s.%s for %s (%s)\n", evt.OwnerType, evt.Attribute, evt.OwnerID, evt.Locale)
	})

	fx, err := loadFixture(ctx, *fixture)
	if err != nil {
		log.Fatalf("load fixture: %v", err)
	}

	enCtx := translatable.WithLocale(ctx, module.DefaultLocale())
	created, err := module.Seed(enCtx, fx)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	fmt.Printf("seeded %d posts\n", len(created))

	for _, code := range cfg.Locales {
		localeCtx := translatable.WithLocale(ctx, code)
		list, err := module.Posts().List(localeCtx)
		if err != nil {
			log.Fatalf("list posts (%s): %v", code, err)
		}
		fmt.Printf("[%s]\n", code)
		for _, post := range list {
			slug, _ := post.GetString(localeCtx, "slug")
			body, _ := post.GetString(localeCtx, "body")
			fmt.Printf("  %-20s %s\n", slug, body)
		}
	}

	if len(created) > 0 {
		frCtx := translatable.WithLocale(ctx, "fr")
		post, err := module.Posts().Get(frCtx, created[0].ID)
		if err != nil {
			log.Fatalf("get post: %v", err)
		}
		if err := post.Capability().Translate(frCtx, "title", "Titre", "fr"); err != nil {
			fmt.Printf("rejected: %v\n", err)
		}
	}
}

func loadFixture(ctx context.Context, path string) (*translatable.Fixture, error) {
	if path == "" {
		return translatable.DefaultFixture()
	}
	return seed.NewLoader(path).Load(ctx)
}
