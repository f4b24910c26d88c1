package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"

	"github.com/you/chamber/internal/store"
)

// secretKeys are masked by config show.
var secretKeys = map[string]bool{
	store.KeyPrivateKey:    true,
	store.KeyZeroXAPIKey:   true,
	store.KeyOneInchAPIKey: true,
}

func (a *app) config(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.errw, "config: action required (set|get|delete|clear|show)")
		return errUsage
	}
	action, rest := args[0], args[1:]

	fs := a.flagSet("config " + action)
	key := fs.String("k", "", "key")
	value := fs.String("v", "", "value (set reads it from stdin when omitted)")
	if err := parse(fs, rest); err != nil {
		return err
	}

	needKey := func() (string, error) {
		if *key == "" {
			fmt.Fprintf(a.errw, "config %s: -k is required\n", action)
			return "", errUsage
		}
		return store.NormalizeKey(*key)
	}

	switch action {
	case "set":
		k, err := needKey()
		if err != nil {
			return err
		}
		v := *value
		if v == "" {
			if v, err = a.readValue(k); err != nil {
				return err
			}
		}
		if v == "" {
			return fmt.Errorf("empty value for %s", k)
		}
		if err := a.store.Set(ctx, k, v); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s saved\n", k)
	case "get":
		k, err := needKey()
		if err != nil {
			return err
		}
		v, err := a.store.Get(ctx, k)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, v)
	case "delete":
		k, err := needKey()
		if err != nil {
			return err
		}
		if err := a.store.Delete(ctx, k); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s deleted\n", k)
	case "clear":
		if err := a.store.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "config cleared")
	case "show":
		all, err := a.store.All(ctx)
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := all[k]
			if secretKeys[k] {
				v = mask(v)
			}
			fmt.Fprintf(a.out, "%s=%s\n", k, v)
		}
	default:
		fmt.Fprintf(a.errw, "config: unknown action %q\n", action)
		return errUsage
	}
	return nil
}

// readValue prompts without echo on a terminal; otherwise it reads one line.
func (a *app) readValue(key string) (string, error) {
	if isTerminal(a.in) {
		fmt.Fprintf(a.errw, "%s: ", key)
		b, err := term.ReadPassword(int(a.in.(*os.File).Fd()))
		fmt.Fprintln(a.errw)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read value for %s: %w", key, err)
	}
	return strings.TrimSpace(line), nil
}

func mask(v string) string {
	if len(v) <= 8 {
		return "********"
	}
	return v[:4] + "…" + v[len(v)-4:]
}
