// Package picker implements the interactive channel and author selection
// prompts.
package picker

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"discord-extractor/filter"
	"discord-extractor/models"

	"github.com/bwmarrin/discordgo"
	"github.com/peterh/liner"
)

// Prompter reads one line of operator input. *liner.State satisfies it in
// production; tests script it.
type Prompter interface {
	Prompt(prompt string) (string, error)
}

var (
	// ErrNoChannels is returned when the channel picker ends with an
	// empty selection.
	ErrNoChannels = errors.New("no channels selected: enter list numbers, ids or names")
	// ErrNoUsers is returned when the author picker is aborted before
	// anything was selected.
	ErrNoUsers = errors.New("no users selected: enter list numbers or ids, or use all")
)

const (
	// displayCap bounds the author listing; selection by id stays
	// unbounded.
	displayCap = 200
	// idLength is the minimum digit count of a Discord snowflake; any
	// shorter digit string is treated as a list index.
	idLength = 17
)

// Console opens the interactive line reader used by both pickers. Close
// it when picking is done.
func Console() *liner.State {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)
	return l
}

// PickChannels lists the channels numbered from 1 and resolves a single
// line of input into channel ids. In-range numbers select by position;
// every other token is taken literally as an id or name. EOF and aborts
// count as an empty selection.
func PickChannels(p Prompter, channels []*discordgo.Channel) ([]string, error) {
	fmt.Println("=== CHANNEL SELECTION ===")
	for i, ch := range channels {
		fmt.Printf("%3d. #%s (%s)\n", i+1, ch.Name, ch.ID)
	}

	line, err := p.Prompt("Channels (ids or numbers)> ")
	if err != nil {
		line = ""
	}

	picked := make(map[string]struct{})
	for _, t := range filter.Tokens(line) {
		if n, ok := index(t, len(channels)); ok {
			picked[channels[n-1].ID] = struct{}{}
		} else {
			picked[t] = struct{}{}
		}
	}
	if len(picked) == 0 {
		return nil, ErrNoChannels
	}
	return keys(picked), nil
}

// PickAuthors lists the directory numbered from 1 and loops on operator
// input until done. Control words: all selects every known author, clear
// empties the running selection, done terminates once the selection is
// non-empty. Digit tokens of snowflake length are literal ids, shorter
// in-range digit tokens are list indexes, everything else is ignored.
// EOF acts as done when something is selected and as an abort otherwise.
func PickAuthors(p Prompter, authors []models.Author) ([]string, error) {
	fmt.Printf("Found %d unique authors.\n", len(authors))
	fmt.Println("=== AUTHORS FROM HISTORY ===")
	shown := authors
	if len(shown) > displayCap {
		shown = shown[:displayCap]
	}
	for i, a := range shown {
		fmt.Printf("%4d. %s <%s> msgs=%d\n", i+1, a.Name, a.ID, a.Count)
	}
	fmt.Println("Enter numbers or user ids (comma/space separated); commands: done | all | clear")

	selected := make(map[string]struct{})
	for {
		line, err := p.Prompt("Users (ids or numbers)> ")
		if err != nil {
			if len(selected) > 0 {
				return keys(selected), nil
			}
			return nil, ErrNoUsers
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "all":
			for _, a := range authors {
				selected[a.ID] = struct{}{}
			}
			return keys(selected), nil
		case "clear":
			selected = make(map[string]struct{})
			fmt.Println("Selection cleared.")
			continue
		case "done":
			if len(selected) > 0 {
				return keys(selected), nil
			}
			fmt.Println("Pick at least one user (or use all).")
			continue
		}

		for _, t := range filter.Tokens(line) {
			t = filter.NormalizeUser(t)
			if !filter.IsDigits(t) {
				continue
			}
			if len(t) >= idLength {
				selected[t] = struct{}{}
			} else if n, ok := index(t, len(authors)); ok {
				selected[authors[n-1].ID] = struct{}{}
			}
		}
		fmt.Printf("Selected so far: %d\n", len(selected))
	}
}

// index resolves t as a 1-based list position, range-checked.
func index(t string, max int) (int, bool) {
	if !filter.IsDigits(t) {
		return 0, false
	}
	n, err := strconv.Atoi(t)
	if err != nil || n < 1 || n > max {
		return 0, false
	}
	return n, true
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
