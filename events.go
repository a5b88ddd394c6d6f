package main

// Event topics
const (
	TopicEnemyKilled         = "enemyKilled"
	TopicEnemyHit            = "enemyHit"
	TopicAllyHit             = "allyHit"
	TopicAllyKilled          = "allyKilled"
	TopicBattleshipHit       = "battleshipHit"
	TopicBattleshipDestroyed = "battleshipDestroyed"
	TopicPlayerHit           = "playerHit"
	TopicPlayerKilled        = "playerKilled"
	TopicDecoyDestroyed      = "decoyDestroyed"
	TopicBattleResult        = "battleResult"
)

// Event is the payload for every topic
type Event struct {
	Topic  string
	Entity Entity // subject: the ship hit or killed
	Source Entity // last damage source, may be nil
	Result string // set for battleResult
}

type EventHandler func(Event)

type subscription struct {
	id      int
	handler EventHandler
}

// EventBus is a synchronous publish/subscribe hub. Handlers run inline during Emit,
// in subscription order; a handler that emits recurses.
type EventBus struct {
	listeners map[string][]subscription
	nextID    int
}

func NewEventBus() *EventBus {
	return &EventBus{listeners: make(map[string][]subscription)}
}

// On subscribes handler to topic and returns a func that unsubscribes it
func (b *EventBus) On(topic string, handler EventHandler) func() {
	b.nextID++
	id := b.nextID
	b.listeners[topic] = append(b.listeners[topic], subscription{id: id, handler: handler})
	return func() { b.off(topic, id) }
}

func (b *EventBus) off(topic string, id int) {
	subs := b.listeners[topic]
	for i, s := range subs {
		if s.id == id {
			next := make([]subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.listeners, topic)
			} else {
				b.listeners[topic] = next
			}
			return
		}
	}
}

// Emit delivers ev to every current subscriber of ev.Topic
func (b *EventBus) Emit(ev Event) {
	subs := b.listeners[ev.Topic]
	for _, s := range subs {
		s.handler(ev)
	}
}

// ListenerCount returns the number of handlers on topic
func (b *EventBus) ListenerCount(topic string) int {
	return len(b.listeners[topic])
}
