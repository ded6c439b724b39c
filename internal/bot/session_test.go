package bot

import (
	"sync"
	"testing"
)

func TestSessionStoreBeginGetClear(t *testing.T) {
	s := NewSessionStore()

	if _, ok := s.Get(1); ok {
		t.Fatal("empty store returned a session")
	}

	s.Begin(1, &Session{State: StateAwaitingCategory, AccountID: 10})
	session, ok := s.Get(1)
	if !ok {
		t.Fatal("session not found after Begin")
	}
	if session.State != StateAwaitingCategory {
		t.Errorf("state = %v, want StateAwaitingCategory", session.State)
	}
	if session.StartedAt.IsZero() {
		t.Error("StartedAt not set by Begin")
	}

	s.Clear(1)
	if _, ok := s.Get(1); ok {
		t.Error("session survived Clear")
	}

	// Clearing an absent session is a no-op.
	s.Clear(1)
}

func TestSessionStoreBeginReplaces(t *testing.T) {
	s := NewSessionStore()

	s.Begin(1, &Session{State: StateAwaitingDueDate, Title: "old"})
	s.Begin(1, &Session{State: StateAwaitingCategory})

	session, _ := s.Get(1)
	if session.Title != "" || session.State != StateAwaitingCategory {
		t.Errorf("Begin did not replace prior session: %+v", session)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestSessionStoreKeysAreIndependent(t *testing.T) {
	s := NewSessionStore()

	s.Begin(1, &Session{Title: "one"})
	s.Begin(2, &Session{Title: "two"})

	a, _ := s.Get(1)
	b, _ := s.Get(2)
	if a.Title == b.Title {
		t.Error("sessions not isolated per key")
	}

	s.Clear(1)
	if _, ok := s.Get(2); !ok {
		t.Error("clearing one key removed another")
	}
}

func TestSessionOffers(t *testing.T) {
	session := &Session{Offered: []int64{7, 9}}

	if !session.Offers(7) || !session.Offers(9) {
		t.Error("offered ids not recognized")
	}
	if session.Offers(8) {
		t.Error("unoffered id accepted")
	}
}

func TestSessionStoreConcurrentAccess(t *testing.T) {
	s := NewSessionStore()
	var wg sync.WaitGroup

	for i := int64(0); i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s.Begin(id, &Session{State: StateAwaitingCategory})
			s.Get(id)
			s.Clear(id)
		}(i)
	}
	wg.Wait()

	if s.Len() != 0 {
		t.Errorf("Len() = %d after all cleared, want 0", s.Len())
	}
}
