// Package main fetches and caches reading shelves from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/blampe/bookshelf/cmd"
	"github.com/blampe/bookshelf/internal"
)

// cli contains our command-line flags.
type cli struct {
	Books   books   `cmd:"" help:"Print a user's read shelf as JSON."`
	User    user    `cmd:"" help:"Resolve a user name to an ID."`
	Details details `cmd:"" help:"Print product details for an ASIN."`
	Image   image   `cmd:"" help:"Download an image through the cache."`
}

type books struct {
	cmd.ServiceConfig

	User string `arg:"" help:"User name or numeric ID."`
}

func (b *books) Run() error {
	return b.ServiceConfig.Run(func(ctx context.Context, svc *internal.Service) error {
		id, err := svc.ResolveUserID(ctx, b.User)
		if err != nil {
			return err
		}
		entries, err := svc.GetBooks(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(entries)
	})
}

type user struct {
	cmd.ServiceConfig

	Name string `arg:"" help:"User name."`
}

func (u *user) Run() error {
	return u.ServiceConfig.Run(func(ctx context.Context, svc *internal.Service) error {
		id, err := svc.ResolveUserID(ctx, u.Name)
		if err != nil {
			return err
		}
		_, err = fmt.Println(id)
		return err
	})
}

type details struct {
	cmd.ServiceConfig

	ASIN string `arg:"" help:"Product ASIN."`
}

func (d *details) Run() error {
	return d.ServiceConfig.Run(func(ctx context.Context, svc *internal.Service) error {
		out, err := svc.GetDetails(ctx, d.ASIN)
		if err != nil {
			return err
		}
		return printJSON(out)
	})
}

type image struct {
	cmd.ServiceConfig

	URL    string `arg:"" help:"Image URL."`
	Output string `short:"o" default:"-" help:"Where to write the image. Defaults to stdout."`
}

func (i *image) Run() error {
	return i.ServiceConfig.Run(func(ctx context.Context, svc *internal.Service) error {
		data, err := svc.GetImage(ctx, i.URL)
		if err != nil {
			return err
		}
		if modified, ok, err := svc.BinaryLastModified(ctx, i.URL); err == nil && ok {
			internal.Log(ctx).Debug("image cached", "url", i.URL, "modified", modified, "size", len(data))
		}
		if i.Output == "-" {
			_, err = os.Stdout.Write(data)
			return err
		}
		return os.WriteFile(i.Output, data, 0o644)
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	kctx := kong.Parse(&cli{})
	err := kctx.Run()
	if err != nil {
		internal.Log(context.Background()).Error("fatal", "err", err)
		os.Exit(1)
	}
}
