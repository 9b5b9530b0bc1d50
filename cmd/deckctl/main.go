package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/youruser/deckbuilder/internal/cards"
	"github.com/youruser/deckbuilder/internal/config"
	"github.com/youruser/deckbuilder/internal/deck"
	imagepkg "github.com/youruser/deckbuilder/internal/image"
	"github.com/youruser/deckbuilder/internal/logging"
	"github.com/youruser/deckbuilder/internal/util"
)

const usage = `usage: deckctl <command> [flags]

commands:
  decode    -fragment F       print the deck a fragment decodes to
  export    -fragment F       print the decklist of a fragment
  validate  -decks FILE       build every deck of a YAML decks file and report rejections
  qr        -fragment F -out FILE
                              write the share QR code as PNG
  watch     -file FILE        print the decklist whenever FILE changes
  add       -file FILE -card NAME
  remove    -file FILE -card NAME
  faction   -file FILE [-primary P] [-secondary S]
  name      -file FILE -name NAME
  clear     -file FILE
                              edit the deck held in FILE; rejections leave it unchanged`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	var o options
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.StringVar(&o.configPath, "config", "deckbuilder.toml", "path to TOML config file")
	fs.StringVar(&o.fragment, "fragment", "", "deck URL fragment")
	fs.StringVar(&o.decksFile, "decks", "decks.yaml", "path to decks YAML file")
	fs.StringVar(&o.out, "out", "deck-qr.png", "output file")
	fs.StringVar(&o.file, "file", "deck.fragment", "file holding a deck fragment")
	fs.StringVar(&o.card, "card", "", "card name")
	fs.StringVar(&o.name, "name", "", "deck name")
	fs.StringVar(&o.primary, "primary", "", "primary faction code, empty to clear")
	fs.StringVar(&o.secondary, "secondary", "", "secondary faction code, empty to clear")
	fs.Parse(args) //nolint:errcheck // ExitOnError
	o.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	if err := run(cmd, o); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	fragment   string
	decksFile  string
	out        string
	file       string
	card       string
	name       string
	primary    string
	secondary  string
	set        map[string]bool // flags given on the command line
}

func run(cmd string, o options) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(config.LogConfig{Level: "warn", Development: true})
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := util.NewFetcher(cfg.FetchTimeout(), cfg.FetchEvery())
	catalog, _ := cards.NewLoader(fetcher, logger).Load(ctx, cfg.CatalogSources())
	engine := deck.NewEngine(catalog)

	switch cmd {
	case "decode":
		s, err := deck.ParseFragment(o.fragment)
		if err != nil {
			return err
		}
		engine.Restore(s)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Deck     *deck.State `json:"deck"`
			View     deck.View   `json:"view"`
			Fragment string      `json:"fragment"`
		}{s, engine.View(s), deck.EncodeURL(s)})

	case "export":
		s := deck.DecodeURL(o.fragment)
		engine.Restore(s)
		fmt.Println(deck.ExportDecklist(catalog, s))
		return nil

	case "validate":
		return validate(engine, o.decksFile)

	case "qr":
		s := deck.DecodeURL(o.fragment)
		engine.Restore(s)
		b, err := imagepkg.GenerateQRPNG(deck.ShareURL(cfg.Server.BaseURL, s), cfg.Server.QRSize)
		if err != nil {
			return err
		}
		if err := util.WriteFile(o.out, b); err != nil {
			return err
		}
		fmt.Println("wrote", o.out)
		return nil

	case "watch":
		return watch(ctx, engine, o.file, logger)

	case "add", "remove", "faction", "name", "clear":
		s, err := edit(engine, cmd, o, logger)
		if err != nil {
			return err
		}
		fmt.Printf("#%s\n%s\n", deck.EncodeURL(s), deck.ExportDecklist(catalog, s))
		return nil
	}
	return fmt.Errorf("unknown command %q\n%s", cmd, usage)
}

func validate(engine *deck.Engine, path string) error {
	df, err := deck.ParseDeckFile(path)
	if err != nil {
		return err
	}
	failed := 0
	for i, entry := range df.Decks {
		s, errs := engine.Build(entry)
		fmt.Printf("Deck %d: %s (%d cards)\n", i+1, entry.Name, s.Total())
		for _, err := range errs {
			var le *deck.LegalityError
			if errors.As(err, &le) {
				fmt.Printf("  rejected: %s [%s]\n", le.Message(), le.Code())
			} else {
				fmt.Printf("  rejected: %v\n", err)
			}
		}
		fmt.Printf("  #%s\n", deck.EncodeURL(s))
		if len(errs) > 0 {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d decks had rejected cards", failed, len(df.Decks))
	}
	return nil
}

func watch(ctx context.Context, engine *deck.Engine, path string, logger *zap.Logger) error {
	ch := deck.NewFileChannel(path, logger)
	initial, err := ch.Read()
	if err != nil {
		return err
	}
	session := deck.NewSession(engine, ch, initial, logger)
	show := func(s *deck.State) {
		fmt.Printf("--- %s (%d cards)\n%s\n", s.Name, s.Total(), deck.ExportDecklist(engine.Catalog(), s))
	}
	session.OnChange(show)
	show(session.State())
	return ch.Watch(ctx)
}

// edit applies one mutation to the deck held in o.file through a session, so
// an accepted change is written back and a rejected one leaves the file alone.
func edit(engine *deck.Engine, cmd string, o options, logger *zap.Logger) (*deck.State, error) {
	ch := deck.NewFileChannel(o.file, logger)
	initial, err := ch.Read()
	if err != nil {
		return nil, err
	}
	session := deck.NewSession(engine, ch, initial, logger)

	switch cmd {
	case "add":
		if o.card == "" {
			return nil, errors.New("add: -card is required")
		}
		s, err := session.AddCard(o.card)
		var le *deck.LegalityError
		if errors.As(err, &le) {
			return s, fmt.Errorf("%s [%s]", le.Message(), le.Code())
		}
		return s, err
	case "remove":
		if o.card == "" {
			return nil, errors.New("remove: -card is required")
		}
		return session.RemoveCard(o.card), nil
	case "faction":
		cur := session.State()
		primary, secondary := cur.Primary, cur.Secondary
		if o.set["primary"] {
			primary = cards.Faction(o.primary)
		}
		if o.set["secondary"] {
			secondary = cards.Faction(o.secondary)
		}
		s, err := session.SetFactions(primary, secondary)
		var le *deck.LegalityError
		if errors.As(err, &le) {
			return s, fmt.Errorf("%s [%s]", le.Message(), le.Code())
		}
		return s, err
	case "name":
		return session.SetDeckName(o.name), nil
	case "clear":
		return session.Clear(), nil
	}
	return nil, fmt.Errorf("unknown edit command %q", cmd)
}
