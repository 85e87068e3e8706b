package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/bpowers/lru/simplelru"
)

var errUnknownOp = errors.New("unknown operation")

type opKind int

const (
	opWrite opKind = iota
	opRead
	opRemove
	opClear
	opDump
)

type op struct {
	kind  opKind
	key   string
	value string
}

// opNames maps operation names to their kind and operand count.
var opNames = map[string]struct {
	kind  opKind
	arity int
}{
	"write":  {opWrite, 2},
	"w":      {opWrite, 2},
	"read":   {opRead, 1},
	"r":      {opRead, 1},
	"remove": {opRemove, 1},
	"rm":     {opRemove, 1},
	"clear":  {opClear, 0},
	"dump":   {opDump, 0},
}

// parseOps turns a flat token stream such as "write a 1 read a" into
// operations.
func parseOps(tokens []string) ([]op, error) {
	var ops []op
	for i := 0; i < len(tokens); {
		spec, ok := opNames[strings.ToLower(tokens[i])]
		if !ok {
			return nil, fmt.Errorf("%w %q", errUnknownOp, tokens[i])
		}
		if i+spec.arity >= len(tokens) {
			return nil, fmt.Errorf("%s needs %d operand(s)", tokens[i], spec.arity)
		}
		o := op{kind: spec.kind}
		if spec.arity > 0 {
			o.key = tokens[i+1]
		}
		if spec.arity > 1 {
			o.value = tokens[i+2]
		}
		ops = append(ops, o)
		i += spec.arity + 1
	}
	return ops, nil
}

// readOps parses one operation per line. Blank lines and lines starting
// with '#' are skipped.
func readOps(r io.Reader) ([]op, error) {
	var ops []op
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		parsed, err := parseOps(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(parsed) != 1 {
			return nil, fmt.Errorf("line %d: expected one operation, got %d", line, len(parsed))
		}
		ops = append(ops, parsed[0])
	}
	return ops, scanner.Err()
}

// session applies operations to a single cache and reports results to out.
type session struct {
	cache *simplelru.LRU[string, string]
	out   io.Writer
}

func newSession(cfg cacheConfig, out io.Writer) (*session, error) {
	cache, err := simplelru.NewLRU(cfg.Size, func(key, value string) {
		slog.Debug("Evicted cache entry", "key", key, "value", value)
	})
	if err != nil {
		return nil, err
	}
	if cfg.LogMisses {
		cache.SetLogger(slog.Default())
	}
	return &session{cache: cache, out: out}, nil
}

func (s *session) apply(o op) {
	switch o.kind {
	case opWrite:
		s.cache.Add(o.key, o.value)
	case opRead:
		if v, ok := s.cache.Get(o.key); ok {
			fmt.Fprintf(s.out, "%s = %s\n", o.key, v)
		} else {
			fmt.Fprintf(s.out, "%s: miss\n", o.key)
		}
	case opRemove:
		if !s.cache.Remove(o.key) {
			fmt.Fprintf(s.out, "%s: not present\n", o.key)
		}
	case opClear:
		s.cache.Purge()
	case opDump:
		s.dump()
	}
}

func (s *session) dump() {
	for e := range s.cache.All() {
		fmt.Fprintf(s.out, "%d %s=%s\n", e.Pos, e.Key, e.Value)
	}
}

func (s *session) run(ops []op) {
	for _, o := range ops {
		s.apply(o)
	}
	fmt.Fprintf(s.out, "order (MRU->LRU): [%s]\n", strings.Join(s.cache.Keys(), " "))
}
