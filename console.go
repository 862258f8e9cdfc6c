/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

var errQuit = errors.New("quit")

// command is one console verb. args is the rest of the line, trimmed.
type command struct {
	usage string
	run   func(args string) error
}

type commands map[string]command

// dispatch runs line against cmds. Unknown verbs and failed commands are
// reported on out; only errQuit ends the console.
func (c commands) dispatch(out io.Writer, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	verb, args, _ := strings.Cut(line, " ")
	verb = strings.ToLower(verb)

	if verb == "help" || verb == "?" {
		c.help(out)
		return nil
	}

	cmd, ok := c[verb]
	if !ok {
		fmt.Fprintf(out, "Unknown command %q, try help\n", verb)
		return nil
	}

	err := cmd.run(strings.TrimSpace(args))
	switch {
	case errors.Is(err, errQuit):
		return err
	case err != nil:
		fmt.Fprintf(out, "Error: %v\n", err)
	}

	return nil
}

func (c commands) help(out io.Writer) {
	verbs := make([]string, 0, len(c))
	for verb := range c {
		verbs = append(verbs, verb)
	}
	slices.Sort(verbs)

	fmt.Fprintln(out, "Commands:")
	for _, verb := range verbs {
		fmt.Fprintf(out, "  %-10s %s\n", verb, c[verb].usage)
	}
}

// readLines feeds lines from in until EOF or until ctx is done.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	return lines
}

// parseStartArgs reads "[category] [impostors]".
func parseStartArgs(args string) (string, int, error) {
	fields := strings.Fields(args)

	category := ""
	if len(fields) > 0 {
		category = strings.ToLower(fields[0])
	}

	impostors := 1
	if len(fields) > 1 {
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return "", 0, fmt.Errorf("impostor count %q is not a number", fields[1])
		}
		impostors = n
	}

	return category, impostors, nil
}

func printRoster(out io.Writer, players []Player) {
	fmt.Fprintf(out, "Players (%d):\n", len(players))
	for i, p := range players {
		suffix := ""
		if p.IsHost {
			suffix = " [host]"
		}
		fmt.Fprintf(out, "  %d. %s%s\n", i+1, p.Name, suffix)
	}
}

func printCategories(out io.Writer, catalog *Catalog, lang Language) {
	fmt.Fprintln(out, "Categories:")
	for _, c := range catalog.Categories() {
		name, words := catalog.Resolve(c.ID, lang)
		fmt.Fprintf(out, "  %-8s %s %s (%d words)\n", c.ID, c.Icon, name, len(words))
	}
}

func printCard(out io.Writer, p Player, round RoundConfig) {
	fmt.Fprintf(out, "%s, category: %s\n", p.Name, round.Category)
	if p.IsImpostor {
		fmt.Fprintln(out, "  You are the IMPOSTOR. Blend in!")
		return
	}
	fmt.Fprintf(out, "  The secret word is: %s\n", round.SecretWord)
}

func printResult(out io.Writer, round RoundConfig) {
	fmt.Fprintf(out, "The secret word was %q (%s).\n", round.SecretWord, round.Category)

	names := make([]string, 0, round.ImpostorCount)
	for _, p := range round.Impostors() {
		names = append(names, p.Name)
	}
	fmt.Fprintf(out, "Impostor(s): %s\n", strings.Join(names, ", "))
}

func printChat(out io.Writer, msgs []ChatMessage) {
	for _, m := range msgs {
		fmt.Fprintf(out, "<%s> %s\n", m.Sender, m.Text)
	}
}

func printDecoys(ctx context.Context, out io.Writer, decoys *DecoyClient, p Player, round RoundConfig) error {
	if !p.IsImpostor {
		return errors.New("decoys are only for impostors")
	}
	if !decoys.Enabled() {
		return errors.New("decoy words are not configured, see --decoy-key")
	}

	words := decoys.Suggest(ctx, round.Category, round.SecretWord)
	if len(words) == 0 {
		fmt.Fprintln(out, "No decoys this time.")
		return nil
	}
	fmt.Fprintf(out, "Decoys: %s\n", strings.Join(words, ", "))

	return nil
}

// roomView remembers what was last printed so only differences are shown.
type roomView struct {
	phase  Phase
	roster []Player
	chat   int
}

func (v *roomView) show(out io.Writer, phase Phase, roster []Player, chat []ChatMessage, round *RoundConfig) {
	if !slices.Equal(roster, v.roster) {
		v.roster = roster
		printRoster(out, roster)
	}

	if v.chat > len(chat) {
		v.chat = 0
	}
	printChat(out, chat[v.chat:])
	v.chat = len(chat)

	if phase == v.phase {
		return
	}
	v.phase = phase

	switch phase {
	case PhaseGameSettings:
		fmt.Fprintln(out, "Choose a category and start the round.")
	case PhaseReveal:
		fmt.Fprintln(out, "Round started! Use card to see your role.")
	case PhaseDiscussion:
		fmt.Fprintln(out, "Discussion: find the impostor.")
	case PhaseResult:
		if round != nil {
			printResult(out, *round)
		}
	case PhaseHome:
		fmt.Fprintln(out, "The room was closed.")
	}
}

func runHost(ctx context.Context, cfg *Config, in io.Reader, out io.Writer) error {
	app, err := newAppContext(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			errorf(err, "CONFIG: Unable to save preferences")
		}
	}()

	h := createRoom(cfg, app.catalog, app.Language())
	go h.run()
	defer h.Reset()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	served := make(chan error, 1)
	go func() {
		served <- ServeRoom(ctx, cfg, h)
	}()

	fmt.Fprintf(out, "Room %s is open on port %d. Players join with: impostor join %s --host <this address>:%d\n",
		h.ID(), cfg.port, h.ID(), cfg.port)
	fmt.Fprintln(out, "Type help for commands.")

	card := func() (Player, RoundConfig, error) {
		round, ok := h.Round()
		if !ok || !h.Phase().InRound() {
			return Player{}, RoundConfig{}, ErrNoRound
		}
		p, _ := round.PlayerByID(hostPlayerID)

		return p, round, nil
	}

	cmds := commands{
		"players": {"list the lobby", func(string) error {
			printRoster(out, h.Roster())
			return nil
		}},
		"categories": {"list word categories", func(string) error {
			printCategories(out, app.catalog, app.Language())
			return nil
		}},
		"settings": {"move from the lobby to game settings", func(string) error {
			return h.OpenSettings()
		}},
		"start": {"[category] [impostors] assign roles and start a round", func(args string) error {
			category, impostors, err := parseStartArgs(args)
			if err != nil {
				return err
			}
			_, err = h.StartRound(category, impostors)
			return err
		}},
		"card": {"show your own role", func(string) error {
			p, round, err := card()
			if err != nil {
				return err
			}
			printCard(out, p, round)
			return nil
		}},
		"decoys": {"suggest bluff words when you are the impostor", func(string) error {
			p, round, err := card()
			if err != nil {
				return err
			}
			return printDecoys(ctx, out, app.decoys, p, round)
		}},
		"next": {"advance reveal -> discussion -> result", func(string) error {
			next, ok := h.Phase().nextInRound()
			if !ok {
				return ErrIllegalTransition
			}
			return h.AdvancePhase(next)
		}},
		"chat": {"<text> send a chat message", func(args string) error {
			return h.SendChat(args)
		}},
		"quit": {"close the room and exit", func(string) error {
			return errQuit
		}},
	}

	var view roomView
	lines := readLines(ctx, in)

	for {
		select {
		case err := <-served:
			return err

		case <-ctx.Done():
			return <-served

		case <-h.Done():
			cancel()
			return <-served

		case <-h.Changes():
			var round *RoundConfig
			if r, ok := h.Round(); ok {
				round = &r
			}
			view.show(out, h.Phase(), h.Roster(), h.Chat(), round)

		case line, ok := <-lines:
			if !ok {
				cancel()
				return <-served
			}
			if err := cmds.dispatch(out, line); errors.Is(err, errQuit) {
				cancel()
				return <-served
			}
		}
	}
}

func runJoin(ctx context.Context, cfg *Config, room string, in io.Reader, out io.Writer) error {
	app, err := newAppContext(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			errorf(err, "CONFIG: Unable to save preferences")
		}
	}()

	p, err := joinRoom(ctx, cfg, cfg.hostAddr, room, cfg.peerName)
	if err != nil {
		return err
	}
	defer p.Close()

	fmt.Fprintf(out, "Joined room %s as %s. Type help for commands.\n", p.RoomID(), cfg.peerName)

	card := func() (Player, RoundConfig, error) {
		s := p.Snapshot()
		if s.Round == nil || !s.Phase.InRound() {
			return Player{}, RoundConfig{}, ErrNoRound
		}
		me, ok := s.Round.PlayerByID(p.ID())
		if !ok {
			return Player{}, RoundConfig{}, errors.New("you are not seated in this round")
		}

		return me, *s.Round, nil
	}

	cmds := commands{
		"players": {"list the lobby", func(string) error {
			printRoster(out, p.Snapshot().Roster)
			return nil
		}},
		"card": {"show your own role", func(string) error {
			me, round, err := card()
			if err != nil {
				return err
			}
			printCard(out, me, round)
			return nil
		}},
		"decoys": {"suggest bluff words when you are the impostor", func(string) error {
			me, round, err := card()
			if err != nil {
				return err
			}
			return printDecoys(ctx, out, app.decoys, me, round)
		}},
		"chat": {"<text> send a chat message", func(args string) error {
			return p.SendChat(args)
		}},
		"quit": {"leave the room", func(string) error {
			return errQuit
		}},
	}

	view := roomView{phase: PhaseOnlineLobby}
	lines := readLines(ctx, in)

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-p.Done():
			fmt.Fprintln(out, "Disconnected from the host.")
			return nil

		case <-p.Changes():
			s := p.Snapshot()
			view.show(out, s.Phase, s.Roster, s.Chat, s.Round)

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := cmds.dispatch(out, line); errors.Is(err, errQuit) {
				return nil
			}
		}
	}
}

func runLocal(ctx context.Context, cfg *Config, in io.Reader, out io.Writer) error {
	app, err := newAppContext(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			errorf(err, "CONFIG: Unable to save preferences")
		}
	}()

	g := newLocalGame(app.catalog, app.Language(), nil)
	if err := g.Setup(); err != nil {
		return err
	}

	fmt.Fprintf(out, "Local game. Add %d to %d players, then open settings. Type help for commands.\n",
		minLocalPlayers, maxLocalPlayers)

	showCurrent := func() error {
		player, pos, total, err := g.Current()
		if err != nil {
			return err
		}
		round, _ := g.Round()

		fmt.Fprintf(out, "Card %d of %d\n", pos, total)
		printCard(out, player, round)

		return nil
	}

	cmds := commands{
		"add": {"<name> add a player", func(args string) error {
			if err := g.AddPlayer(args); err != nil {
				return err
			}
			fmt.Fprintf(out, "%d player(s)\n", len(g.Players()))
			return nil
		}},
		"remove": {"<n> remove the player at position n", func(args string) error {
			n, err := strconv.Atoi(args)
			if err != nil {
				return fmt.Errorf("position %q is not a number", args)
			}
			return g.RemovePlayer(n - 1)
		}},
		"players": {"list players", func(string) error {
			for i, name := range g.Players() {
				fmt.Fprintf(out, "  %d. %s\n", i+1, name)
			}
			return nil
		}},
		"categories": {"list word categories", func(string) error {
			printCategories(out, app.catalog, g.Language())
			return nil
		}},
		"settings": {"move on to game settings", func(string) error {
			if err := g.OpenSettings(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Up to %d impostor(s) suggested for %d players.\n",
				MaxImpostors(len(g.Players())), len(g.Players()))
			return nil
		}},
		"start": {"[category] [impostors] assign roles and start the reveal", func(args string) error {
			category, impostors, err := parseStartArgs(args)
			if err != nil {
				return err
			}
			if _, err := g.Start(category, impostors); err != nil {
				return err
			}
			fmt.Fprintln(out, "Pass the device around. Each player uses show, then pass.")
			return nil
		}},
		"show": {"show the current player's card", func(string) error {
			return showCurrent()
		}},
		"pass": {"hide the card and hand the device on", func(string) error {
			done, err := g.Pass()
			if err != nil {
				return err
			}
			fmt.Fprint(out, strings.Repeat("\n", 20))
			if done {
				fmt.Fprintln(out, "Everyone has seen their card. Discussion: find the impostor, then reveal.")
				return nil
			}
			player, pos, total, _ := g.Current()
			fmt.Fprintf(out, "Hand the device to %s (%d of %d).\n", player.Name, pos, total)
			return nil
		}},
		"decoys": {"suggest bluff words for the current impostor", func(string) error {
			player, _, _, err := g.Current()
			if err != nil {
				return err
			}
			round, _ := g.Round()
			return printDecoys(ctx, out, app.decoys, player, round)
		}},
		"reveal": {"end the discussion and unmask the impostors", func(string) error {
			round, err := g.Unmask()
			if err != nil {
				return err
			}
			printResult(out, round)
			return nil
		}},
		"reset": {"play again with the same players", func(string) error {
			g.Reset()
			return g.Setup()
		}},
		"lang": {"<en|pt|es> change the word language", func(args string) error {
			l, err := parseLanguage(args)
			if err != nil {
				return err
			}
			g.SetLanguage(l)
			app.prefs.SetLanguage(l)
			return nil
		}},
		"quit": {"exit", func(string) error {
			return errQuit
		}},
	}

	lines := readLines(ctx, in)

	for {
		select {
		case <-ctx.Done():
			return nil

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := cmds.dispatch(out, line); errors.Is(err, errQuit) {
				return nil
			}
		}
	}
}
