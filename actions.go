package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// actionRunner executes queued backend calls one at a time and streams
// progress into the logs pane. The wizard's post-generate chain (save,
// approve, showcase refresh) runs through it so each step stays
// independently non-fatal.

type actionMsg interface {
	isAction()
	actionID() int
}

type actionStartedMsg struct {
	Title string
	ID    int
}

func (actionStartedMsg) isAction()         {}
func (msg actionStartedMsg) actionID() int { return msg.ID }

type actionLogMsg struct {
	Title string
	Line  string
	ID    int
}

func (actionLogMsg) isAction()         {}
func (msg actionLogMsg) actionID() int { return msg.ID }

type actionFinishedMsg struct {
	Title string
	Err   error
	ID    int
}

func (actionFinishedMsg) isAction()         {}
func (msg actionFinishedMsg) actionID() int { return msg.ID }

type actionChannelClosedMsg struct {
	ID int
}

func (actionChannelClosedMsg) isAction()         {}
func (msg actionChannelClosedMsg) actionID() int { return msg.ID }

type actionRequest struct {
	title    string
	run      func(ctx context.Context, log func(string)) error
	onFinish func(error) tea.Cmd
}

type actionRunner struct {
	queue   []actionRequest
	current *actionRequest
	events  chan actionMsg
	running bool
	nextID  int
}

func newActionRunner() *actionRunner {
	return &actionRunner{}
}

func (r *actionRunner) Enqueue(req actionRequest) tea.Cmd {
	r.queue = append(r.queue, req)
	return r.nextCmd()
}

// Handle absorbs one runner message and returns the command that keeps the
// event stream flowing (and kicks off the next queued action when one ends).
func (r *actionRunner) Handle(msg actionMsg) tea.Cmd {
	switch msg := msg.(type) {
	case actionFinishedMsg:
		var followUp tea.Cmd
		if r.current != nil && r.current.onFinish != nil {
			followUp = r.current.onFinish(msg.Err)
		}
		r.current = nil
		cmds := collectCmds(followUp, waitForActionMsg(r.events))
		return cmds
	case actionChannelClosedMsg:
		r.running = false
		r.events = nil
		return r.nextCmd()
	default:
		return waitForActionMsg(r.events)
	}
}

func (r *actionRunner) nextCmd() tea.Cmd {
	if r.running || len(r.queue) == 0 {
		return nil
	}
	req := r.queue[0]
	r.queue = r.queue[1:]
	r.current = &req
	r.running = true
	r.nextID++
	id := r.nextID

	r.events = make(chan actionMsg)
	go runAction(id, req, r.events)
	return waitForActionMsg(r.events)
}

func collectCmds(cmds ...tea.Cmd) tea.Cmd {
	var active []tea.Cmd
	for _, cmd := range cmds {
		if cmd != nil {
			active = append(active, cmd)
		}
	}
	switch len(active) {
	case 0:
		return nil
	case 1:
		return active[0]
	default:
		return tea.Batch(active...)
	}
}

func runAction(id int, req actionRequest, ch chan<- actionMsg) {
	defer close(ch)

	ch <- actionStartedMsg{Title: req.title, ID: id}

	log := func(line string) {
		ch <- actionLogMsg{Title: req.title, Line: line, ID: id}
	}
	err := req.run(context.Background(), log)
	ch <- actionFinishedMsg{Title: req.title, Err: err, ID: id}
}

func waitForActionMsg(ch <-chan actionMsg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return actionChannelClosedMsg{}
		}
		return msg
	}
}
