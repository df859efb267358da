// Package console is the text binding layer of the tracker: it parses
// typed commands into store actions and renders each View as a table.
package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tally/internal/core"
	"tally/internal/tracker"
)

// Verb identifies a console command.
type Verb string

const (
	VerbAdd    Verb = "add"
	VerbDelete Verb = "delete"
	VerbFilter Verb = "filter"
	VerbSort   Verb = "sort"
	VerbShow   Verb = "show"
	VerbHelp   Verb = "help"
	VerbQuit   Verb = "quit"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

// Command is one parsed input line.
type Command struct {
	Verb   Verb
	Add    tracker.AddInput
	ID     int64
	Filter core.Category
	Sort   core.SortMode
}

var aliases = map[string]Verb{
	"add":    VerbAdd,
	"a":      VerbAdd,
	"delete": VerbDelete,
	"del":    VerbDelete,
	"rm":     VerbDelete,
	"filter": VerbFilter,
	"sort":   VerbSort,
	"show":   VerbShow,
	"ls":     VerbShow,
	"list":   VerbShow,
	"help":   VerbHelp,
	"?":      VerbHelp,
	"quit":   VerbQuit,
	"exit":   VerbQuit,
	"q":      VerbQuit,
}

// Parse reads one line. A blank line parses as show.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{Verb: VerbShow}, nil
	}
	word, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	verb, ok := aliases[strings.ToLower(word)]
	if !ok {
		return Command{}, fmt.Errorf("%w %q (try help)", ErrUnknownCommand, word)
	}

	cmd := Command{Verb: verb}
	switch verb {
	case VerbAdd:
		fields := strings.Split(rest, "|")
		if rest == "" || len(fields) > 4 {
			return Command{}, fmt.Errorf("%w: add <name>|<amount>|<category>|<date>", ErrUsage)
		}
		for len(fields) < 4 {
			fields = append(fields, "")
		}
		cmd.Add = tracker.AddInput{
			Name:     strings.TrimSpace(fields[0]),
			Amount:   strings.TrimSpace(fields[1]),
			Category: strings.TrimSpace(fields[2]),
			Date:     strings.TrimSpace(fields[3]),
		}
	case VerbDelete:
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return Command{}, fmt.Errorf("%w: delete <id>", ErrUsage)
		}
		cmd.ID = id
	case VerbFilter:
		c, err := core.ParseFilter(rest)
		if err != nil {
			return Command{}, fmt.Errorf("%w: filter [%s]", err, joinCategories())
		}
		cmd.Filter = c
	case VerbSort:
		m, err := core.ParseSortMode(rest)
		if err != nil {
			return Command{}, fmt.Errorf("%w: sort <%s>", err, joinSortModes())
		}
		cmd.Sort = m
	}
	return cmd, nil
}

func joinCategories() string {
	names := make([]string, 0, len(core.Categories())+1)
	names = append(names, "all")
	for _, c := range core.Categories() {
		names = append(names, string(c))
	}
	return strings.Join(names, "|")
}

func joinSortModes() string {
	names := make([]string, 0, len(core.SortModes()))
	for _, m := range core.SortModes() {
		names = append(names, string(m))
	}
	return strings.Join(names, "|")
}

// Help lists the console commands.
func Help() string {
	return strings.Join([]string{
		"Commands:",
		"  add <name>|<amount>|<category>|<date>   add an expense (date as " + core.DateLayout + ")",
		"  delete <id>                             remove an expense",
		"  filter [category]                       show one category (" + joinCategories() + ")",
		"  sort <mode>                             " + joinSortModes(),
		"  show                                    print the current view",
		"  help                                    this text",
		"  quit                                    leave",
	}, "\n") + "\n"
}
