// Command migrate applies or inspects the schemata database schema.
//
//	migrate [-config path] [-dsn url] up|down|version
//	migrate [-config path] [-dsn url] steps N
//	migrate [-config path] [-dsn url] force VERSION
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"

	"github.com/JaimeStill/schemata/internal/config"
	"github.com/JaimeStill/schemata/internal/migrations"
	"github.com/JaimeStill/schemata/pkg/database"
)

func main() {
	path := flag.String("config", config.BaseConfigFile, "base config file used when -dsn is empty")
	dsn := flag.String("dsn", "", "database URL")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	if err := run(*path, *dsn, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(flag.CommandLine.Output(), "usage: migrate [flags] up|down|version|steps N|force VERSION")
	flag.PrintDefaults()
}

func run(path, dsn string, args []string) error {
	if dsn == "" {
		cfg, err := config.LoadFrom(path)
		if err != nil {
			return err
		}
		dsn = cfg.Database.URL()
	}

	m, err := database.NewMigrator(migrations.FS, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	switch cmd := args[0]; cmd {
	case "up":
		return report(m.Up(), "schema is current")
	case "down":
		return report(m.Down(), "all migrations reverted")
	case "version":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)
		return nil
	case "steps", "force":
		n, err := intArg(args)
		if err != nil {
			return fmt.Errorf("%s: %w", cmd, err)
		}
		if cmd == "force" {
			return report(m.Force(n), fmt.Sprintf("forced to version %d", n))
		}
		return report(m.Steps(n), fmt.Sprintf("applied %d step(s)", n))
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func intArg(args []string) (int, error) {
	if len(args) != 2 {
		return 0, errors.New("expected one integer argument")
	}
	return strconv.Atoi(args[1])
}

func report(err error, done string) error {
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	fmt.Println(done)
	return nil
}
