package tui

import (
	"sync"

	"github.com/ilievs/facelight/notify"
)

// NotificationFeed forwards notifier changes to a channel holding only the
// newest message.
func NotificationFeed(n *notify.Notifier) <-chan notify.Message {
	ch := make(chan notify.Message, 1)
	var mu sync.Mutex
	n.OnChange(func(msg notify.Message) {
		mu.Lock()
		defer mu.Unlock()
		select {
		case <-ch:
		default:
		}
		ch <- msg
	})
	return ch
}
