// Command lv is a CLI client for the LevelVault service.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: lv [-addr URL] <command> [flags]

commands:
  signup  -u USER -p PASS     create an account
  login   -u USER -p PASS     check credentials
  load    -u USER [-p PASS]   fetch the stored profile
  sync    -f FILE             push a profile ("-" reads stdin)
  levels                      list the public level catalog
  status                      print the server diagnostics page
`)
	os.Exit(2)
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "server base URL")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
	}

	c := &client{base: *addr, http: &http.Client{Timeout: 30 * time.Second}}

	cmd, args := flag.Arg(0), flag.Args()[1:]
	var err error
	switch cmd {
	case "signup":
		err = c.credentials("/signup", args)
	case "login":
		err = c.credentials("/login", args)
	case "load":
		err = c.load(args)
	case "sync":
		err = c.sync(args)
	case "levels":
		err = c.post("/getlevels", map[string]any{})
	case "status":
		err = c.status()
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "lv:", err)
		os.Exit(1)
	}
}

type client struct {
	base string
	http *http.Client
}

func (c *client) credentials(path string, args []string) error {
	fs := flag.NewFlagSet(path, flag.ExitOnError)
	user := fs.String("u", "", "username")
	pass := fs.String("p", "", "password")
	_ = fs.Parse(args)
	if *user == "" || *pass == "" {
		return fmt.Errorf("username and password are required")
	}
	return c.post(path, map[string]any{"username": *user, "password": *pass})
}

func (c *client) load(args []string) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	user := fs.String("u", "", "username")
	pass := fs.String("p", "", "password")
	_ = fs.Parse(args)
	if *user == "" {
		return fmt.Errorf("username is required")
	}
	playerData := map[string]any{"username": *user}
	if *pass != "" {
		playerData["password"] = *pass
	}
	return c.post("/load", map[string]any{"playerData": playerData})
}

func (c *client) sync(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	file := fs.String("f", "-", "profile JSON file")
	_ = fs.Parse(args)
	raw, err := readAll(*file)
	if err != nil {
		return err
	}
	var playerData json.RawMessage
	if err := json.Unmarshal(raw, &playerData); err != nil {
		return fmt.Errorf("bad profile JSON: %w", err)
	}
	return c.post("/sync", map[string]any{"playerData": playerData})
}

func (c *client) post(path string, body any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.http.Post(c.base+path, "application/json", bytes.NewReader(buf))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	var v any
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return err
	}
	printJSON(v)
	return nil
}

func (c *client) status() error {
	resp, err := c.http.Get(c.base + "/")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, err = io.Copy(os.Stdout, resp.Body)
	fmt.Println()
	return err
}

func readAll(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
