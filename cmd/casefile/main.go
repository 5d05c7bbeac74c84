// Command casefile inspects and edits case containers from the shell.
//
// Usage:
//
//	casefile -case <path> dump
//	casefile -case <path> get <xml-path>
//	casefile -case <path> set <xml-path> <value>
//	casefile -case <path> materials
//	casefile -case <path> regions
//	casefile -case <path> attachments [prefix]
//
// The container and attachment backends are selected through FLOWCORE_*
// environment variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"flowcore/internal/core"
	"flowcore/internal/infra/attach/factory"
)

var exitFunc = os.Exit

func main() {
	exitFunc(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("casefile", flag.ContinueOnError)
	fs.SetOutput(stderr)
	casePath := fs.String("case", "", "path of the case container")
	verbose := fs.Bool("v", false, "log service operations")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if *casePath == "" || len(rest) == 0 {
		fmt.Fprintln(stderr, "usage: casefile -case <path> <dump|get|set|materials|regions|attachments> [args]")
		return 2
	}

	var opts []core.ServiceOption
	if *verbose {
		opts = append(opts, core.WithLogger(core.NewSlogLogger(slog.New(slog.NewTextHandler(stderr, nil)))))
	}
	svc, err := core.NewService(opts...)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	defer svc.Close()

	ctx := context.Background()
	if err := dispatch(ctx, svc, *casePath, rest, stdout); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func dispatch(ctx context.Context, svc *core.Service, casePath string, args []string, stdout io.Writer) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "dump":
		if err := svc.Load(ctx, casePath); err != nil {
			return err
		}
		payload, err := svc.Store().SerializeDocument()
		if err != nil {
			return err
		}
		_, err = stdout.Write(payload)
		return err
	case "get":
		if len(rest) != 1 {
			return fmt.Errorf("get needs exactly one xml path")
		}
		if err := svc.Load(ctx, casePath); err != nil {
			return err
		}
		value, err := svc.GetValue(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, value)
		return nil
	case "set":
		if len(rest) != 2 {
			return fmt.Errorf("set needs an xml path and a value")
		}
		if err := svc.Load(ctx, casePath); err != nil {
			return err
		}
		if err := svc.SetValue(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		return svc.Save(ctx)
	case "materials":
		if err := svc.Load(ctx, casePath); err != nil {
			return err
		}
		materials, err := svc.Materials(ctx)
		if err != nil {
			return err
		}
		for _, m := range materials {
			fmt.Fprintf(stdout, "%d\t%s\t%s\n", m.ID, m.Name, m.Phase)
		}
		return nil
	case "regions":
		if err := svc.Load(ctx, casePath); err != nil {
			return err
		}
		regions, err := svc.Regions(ctx)
		if err != nil {
			return err
		}
		for _, r := range regions {
			fmt.Fprintf(stdout, "%s\tmaterial=%d\n", r.Name, r.MaterialID)
		}
		return nil
	case "attachments":
		store, err := factory.Open(ctx)
		if err != nil {
			return err
		}
		prefix := ""
		if len(rest) > 0 {
			prefix = rest[0]
		}
		infos, err := store.List(ctx, prefix)
		if err != nil {
			return err
		}
		for _, info := range infos {
			fmt.Fprintf(stdout, "%s\t%d\t%s\n", info.Key, info.Size, info.ContentType)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
