// Command explorer is a terminal front end over the same stores and identity
// provider as the server, running the client components in process.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/auth"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/config"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/explorer"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/service"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/storage"
)

const help = `commands:
  tab explore|events|observations|profile|signin
  find <text>          filter the current catalog or event list
  type <type>|All      type filter
  expand <id>          toggle details
  signup <email> <password> | signin <email> <password> | signout
  new | set <field> <value> | submit | cancel
  list | delete <id>
  remind <event id>    toggle a reminder
  sky [lat lon]
  quit`

func main() {
	debug := flag.Bool("debug", false, "log to stderr")
	flag.Parse()

	cfg := config.Load()
	var logger internal.Logger = internal.NopLogger()
	if *debug {
		l, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
		if err != nil {
			fmt.Fprintln(os.Stderr, "logger:", err)
			os.Exit(1)
		}
		logger = l
	}

	ctx := context.Background()
	store, err := storage.NewStore(cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "storage:", err)
		os.Exit(1)
	}
	defer store.Close()
	provider, err := auth.NewProvider(ctx, cfg, store, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "auth:", err)
		os.Exit(1)
	}

	app := explorer.New(provider, store, logger)
	defer app.Close()
	if err := app.Reminders.Start(""); err != nil {
		fmt.Fprintln(os.Stderr, "reminders:", err)
		os.Exit(1)
	}
	defer app.Reminders.Stop()

	repl(ctx, app, os.Stdin, os.Stdout)
}

func repl(ctx context.Context, app *explorer.App, in io.Reader, out io.Writer) {
	fmt.Fprintln(out, help)
	render(app, out)
	sc := bufio.NewScanner(in)
	for {
		for _, n := range app.Notices() {
			fmt.Fprintf(out, "** reminder: %s is today **\n", n.Event.Title)
		}
		fmt.Fprintf(out, "[%s] > ", app.Tab())
		if !sc.Scan() {
			return
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return
		}
		if err := run(ctx, app, fields[0], fields[1:], out); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
		render(app, out)
	}
}

func run(ctx context.Context, app *explorer.App, cmd string, args []string, out io.Writer) error {
	arg := strings.Join(args, " ")
	switch cmd {
	case "help":
		fmt.Fprintln(out, help)
	case "tab":
		t := explorer.Tab(arg)
		if !t.Valid() {
			return fmt.Errorf("unknown tab %q", arg)
		}
		app.Navigate(t)
	case "find":
		if app.Tab() == explorer.TabEvents {
			app.Events.Query = arg
		} else {
			app.Catalog.Query = arg
		}
	case "type":
		if app.Tab() == explorer.TabEvents {
			app.Events.Type = arg
		} else {
			app.Catalog.Type = arg
		}
	case "expand":
		id, err := strconv.Atoi(arg)
		if err != nil {
			return err
		}
		if app.Tab() == explorer.TabEvents {
			app.Events.Toggle(id)
		} else {
			app.Catalog.Toggle(id)
		}
	case "signup", "signin":
		if len(args) != 2 {
			return errors.New("usage: " + cmd + " <email> <password>")
		}
		var err error
		if cmd == "signup" {
			_, err = app.Session.SignUp(ctx, args[0], args[1])
		} else {
			_, err = app.Session.SignIn(ctx, args[0], args[1])
		}
		if err != nil {
			return err
		}
		app.Navigate(explorer.TabObservations)
	case "signout":
		return app.Session.SignOut(ctx)
	case "new":
		app.Navigate(explorer.TabObservations)
		app.Form.Open()
	case "set":
		if len(args) < 1 {
			return errors.New("usage: set <field> <value>")
		}
		return app.Form.Set(args[0], strings.Join(args[1:], " "))
	case "submit":
		obs, err := app.SubmitObservation(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "logged %s\n", obs.Name)
	case "cancel":
		return app.Form.Cancel()
	case "list":
		app.Navigate(explorer.TabObservations)
	case "delete":
		return app.RemoveObservation(ctx, arg)
	case "remind":
		id, err := strconv.Atoi(arg)
		if err != nil {
			return err
		}
		on, err := app.ToggleReminder(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "reminder set: %v\n", on)
	case "sky":
		var loc *service.Location
		if len(args) == 2 {
			lat, err1 := strconv.ParseFloat(args[0], 64)
			lon, err2 := strconv.ParseFloat(args[1], 64)
			if err1 != nil || err2 != nil {
				return errors.New("usage: sky <lat> <lon>")
			}
			loc = &service.Location{Lat: lat, Lon: lon}
		}
		printSky(app.SkyTonight(loc), out)
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}
