package player

import (
	"sync"

	"github.com/tubecli/tube/log"
)

// reply is what a waiting caller receives: the player's response or a terminal error.
type reply struct {
	resp *Response
	err  error
}

// dispatch correlates outbound request ids with their one-shot reply slots.
type dispatch struct {
	mu      sync.Mutex
	pending map[int64]chan reply
	err     error
}

func newDispatch() *dispatch {
	return &dispatch{pending: make(map[int64]chan reply)}
}

// register allocates a slot for id. It must happen before the command is written.
func (d *dispatch) register(id int64) (<-chan reply, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.err != nil {
		return nil, d.err
	}

	ch := make(chan reply, 1)
	d.pending[id] = ch
	return ch, nil
}

// complete resolves the slot matching resp. Unknown ids are dropped.
func (d *dispatch) complete(resp *Response) bool {
	d.mu.Lock()
	ch, ok := d.pending[resp.RequestID]
	if ok {
		delete(d.pending, resp.RequestID)
	}
	d.mu.Unlock()

	if !ok {
		log.With(log.Fields{"request_id": resp.RequestID}).Warnf("response for unknown or abandoned request")
		return false
	}

	ch <- reply{resp: resp}
	return true
}

// cancel deregisters id so a late response is discarded.
func (d *dispatch) cancel(id int64) {
	d.mu.Lock()
	delete(d.pending, id)
	d.mu.Unlock()
}

// fail resolves every outstanding slot with err and refuses new registrations.
func (d *dispatch) fail(err error) {
	d.mu.Lock()
	if d.err != nil {
		d.mu.Unlock()
		return
	}
	d.err = err
	pending := d.pending
	d.pending = make(map[int64]chan reply)
	d.mu.Unlock()

	for _, ch := range pending {
		ch <- reply{err: err}
	}
}

func (d *dispatch) outstanding() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
