// Package shop holds the per-session storefront state: the lesson catalog,
// the cart, the sorted view, the checkout form and the transient messages.
//
// A Storefront is safe for concurrent use. Its lock is never held across a
// backend call, so browsing stays responsive while a search or a checkout
// is in flight.
package shop

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/alextreichler/lessonshop/internal/lessonapi"
	"github.com/alextreichler/lessonshop/internal/models"
)

var (
	ErrUnknownLesson      = errors.New("unknown lesson")
	ErrSoldOut            = errors.New("no space left for lesson")
	ErrNotInCart          = errors.New("lesson is not in the cart")
	ErrInvalidForm        = errors.New("checkout form is invalid")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrSuperseded         = errors.New("search superseded by a newer one")
)

type EventKind string

const (
	LessonsChanged EventKind = "lessons"
	CartChanged    EventKind = "cart"
	ViewChanged    EventKind = "view"
	FormChanged    EventKind = "form"
	NoticeChanged  EventKind = "notice"
	MessageChanged EventKind = "message"
)

type Event struct {
	Kind EventKind
}

type Options struct {
	NoticeDuration time.Duration // add-to-cart notification lifetime
	NoticeInterval time.Duration // countdown tick
	MessageTTL     time.Duration // checkout/search messages
	Logger         *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		NoticeDuration: 3 * time.Second,
		NoticeInterval: 50 * time.Millisecond,
		MessageTTL:     5 * time.Second,
	}
}

type Storefront struct {
	api  lessonapi.API
	opts Options
	log  *slog.Logger

	mu          sync.Mutex
	lessons     []models.Lesson
	version     uint64         // bumped on every catalog or space change
	serverSpace map[string]int // space as last reported by the backend
	cart        []models.CartItem
	loaded      bool
	query       string
	applied     string // query of the catalog currently shown
	searchSeq   uint64
	cancel      func()
	sortKey     SortKey
	sortOrder   SortOrder
	form        CheckoutForm
	checkingOut bool
	lastErr     error
	view        sortedView

	notice  *Notifier
	message *Banner

	obsMu     sync.Mutex
	observers map[int]func(Event)
	nextObs   int
}

func New(api lessonapi.API, opts Options) *Storefront {
	def := DefaultOptions()
	if opts.NoticeDuration <= 0 {
		opts.NoticeDuration = def.NoticeDuration
	}
	if opts.NoticeInterval <= 0 {
		opts.NoticeInterval = def.NoticeInterval
	}
	if opts.MessageTTL <= 0 {
		opts.MessageTTL = def.MessageTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Storefront{
		api:         api,
		opts:        opts,
		log:         logger,
		serverSpace: make(map[string]int),
		sortKey:     SortTopic,
		sortOrder:   Ascending,
		observers:   make(map[int]func(Event)),
	}
	s.notice = NewNotifier(opts.NoticeDuration, opts.NoticeInterval, func() { s.emit(NoticeChanged) })
	s.message = NewBanner(opts.MessageTTL, func() { s.emit(MessageChanged) })
	return s
}

// Subscribe registers fn for state change events and returns a function
// that removes it. fn is called without any storefront lock held.
func (s *Storefront) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *Storefront) emit(kinds ...EventKind) {
	s.obsMu.Lock()
	fns := make([]func(Event), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.Unlock()

	for _, k := range kinds {
		for _, fn := range fns {
			fn(Event{Kind: k})
		}
	}
}

// Close stops the notification timers and any in-flight search.
func (s *Storefront) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.notice.Stop()
	s.message.Stop()
}

// Lessons returns a copy of the catalog in backend order.
func (s *Storefront) Lessons() []models.Lesson {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Lesson(nil), s.lessons...)
}

// Lesson returns the catalog entry with the given id.
func (s *Storefront) Lesson(id string) (models.Lesson, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.lessonIndex(id); i >= 0 {
		return s.lessons[i], true
	}
	return models.Lesson{}, false
}

func (s *Storefront) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// LastError is the error recorded by the most recent failed fetch or checkout.
func (s *Storefront) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Notice returns the add-to-cart notification and its remaining progress (0-100).
func (s *Storefront) Notice() (string, float64) {
	return s.notice.Current()
}

// Message returns the current checkout or error message.
func (s *Storefront) Message() Message {
	return s.message.Current()
}

// Snapshot is a consistent copy of everything a page needs.
type Snapshot struct {
	Lessons        []models.Lesson
	Cart           []models.CartItem
	CartCount      int
	CartTotal      float64
	Query          string
	SortKey        SortKey
	SortOrder      SortOrder
	Form           CheckoutForm
	Notice         string
	NoticeProgress float64
	Message        Message
	CheckingOut    bool
	Static         bool
}

func (s *Storefront) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		Lessons:     s.sortedLocked(),
		Cart:        append([]models.CartItem(nil), s.cart...),
		Query:       s.query,
		SortKey:     s.sortKey,
		SortOrder:   s.sortOrder,
		Form:        s.form,
		CheckingOut: s.checkingOut,
		Static:      lessonapi.IsStatic(s.api),
	}
	s.mu.Unlock()

	for _, item := range snap.Cart {
		snap.CartCount += item.Quantity
		snap.CartTotal += item.Subtotal()
	}
	snap.Notice, snap.NoticeProgress = s.notice.Current()
	snap.Message = s.message.Current()
	return snap
}

func (s *Storefront) lessonIndex(id string) int {
	for i := range s.lessons {
		if s.lessons[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Storefront) cartIndex(id string) int {
	for i := range s.cart {
		if s.cart[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Storefront) cartQuantity(id string) int {
	if i := s.cartIndex(id); i >= 0 {
		return s.cart[i].Quantity
	}
	return 0
}
