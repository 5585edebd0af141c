// Package state folds a share's event log into its current view.
package state

import (
	"sort"

	"github.com/neilberkman/ccshare/internal/core/models"
)

// State is the compacted view of a share: the latest session, deduplicated
// messages and parts, the current diff set and the models in use.
type State struct {
	Session  *models.SessionInfo
	Messages map[string][]models.MessageInfo // sessionID -> ordered by time.created
	Parts    map[string][]models.PartInfo    // messageID -> first-append order
	Diff     []models.FileDiff               // nil until a diff event is seen
	Models   []models.ModelInfo

	seq      int
	msgSeen  map[string]int    // message id -> first-seen sequence
	msgGroup map[string]string // message id -> sessionID of its group
	partPos  map[partKey]int
	modelPos map[string]int
}

type partKey struct {
	messageID string
	partID    string
}

// New returns an empty state.
func New() *State {
	return &State{
		Messages: make(map[string][]models.MessageInfo),
		Parts:    make(map[string][]models.PartInfo),
		msgSeen:  make(map[string]int),
		msgGroup: make(map[string]string),
		partPos:  make(map[partKey]int),
		modelPos: make(map[string]int),
	}
}

// Reconstruct folds events in slice order, which must be log append order.
func Reconstruct(events []models.ShareData) *State {
	s := New()
	s.Merge(events)
	return s
}

// Merge folds more events into s.
func (s *State) Merge(events []models.ShareData) {
	for _, e := range events {
		switch e := e.(type) {
		case models.Session:
			info := e.Data
			s.Session = &info
		case models.Message:
			s.putMessage(e.Data)
		case models.Part:
			s.putPart(e.Data)
		case models.SessionDiff:
			diff := make([]models.FileDiff, len(e.Data))
			copy(diff, e.Data)
			s.Diff = diff
		case models.Model:
			s.putModel(e.Data)
		default:
			models.Unreachable(e)
		}
	}
}

func (s *State) putMessage(m models.MessageInfo) {
	seen, ok := s.msgSeen[m.ID]
	if !ok {
		seen = s.seq
		s.seq++
		s.msgSeen[m.ID] = seen
	} else if old := s.msgGroup[m.ID]; old != m.SessionID {
		s.dropMessage(old, m.ID)
	} else {
		group := s.Messages[m.SessionID]
		for i := range group {
			if group[i].ID == m.ID {
				group[i] = m
				break
			}
		}
		s.sortGroup(m.SessionID)
		return
	}
	s.msgGroup[m.ID] = m.SessionID
	s.Messages[m.SessionID] = append(s.Messages[m.SessionID], m)
	s.sortGroup(m.SessionID)
}

func (s *State) dropMessage(sessionID, id string) {
	group := s.Messages[sessionID]
	for i := range group {
		if group[i].ID == id {
			group = append(group[:i], group[i+1:]...)
			break
		}
	}
	if len(group) == 0 {
		delete(s.Messages, sessionID)
		return
	}
	s.Messages[sessionID] = group
}

func (s *State) sortGroup(sessionID string) {
	group := s.Messages[sessionID]
	sort.SliceStable(group, func(i, j int) bool {
		if group[i].Time.Created != group[j].Time.Created {
			return group[i].Time.Created < group[j].Time.Created
		}
		return s.msgSeen[group[i].ID] < s.msgSeen[group[j].ID]
	})
}

func (s *State) putPart(p models.PartInfo) {
	key := partKey{messageID: p.MessageID, partID: p.ID}
	if i, ok := s.partPos[key]; ok {
		s.Parts[p.MessageID][i] = p
		return
	}
	s.partPos[key] = len(s.Parts[p.MessageID])
	s.Parts[p.MessageID] = append(s.Parts[p.MessageID], p)
}

func (s *State) putModel(m models.ModelInfo) {
	if i, ok := s.modelPos[m.Key()]; ok {
		s.Models[i] = m
		return
	}
	s.modelPos[m.Key()] = len(s.Models)
	s.Models = append(s.Models, m)
}

// SessionIDs returns the keys of Messages, the primary session first and
// the rest ascending.
func (s *State) SessionIDs() []string {
	primary := ""
	if s.Session != nil {
		primary = s.Session.ID
	}
	ids := make([]string, 0, len(s.Messages))
	for id := range s.Messages {
		if id != primary {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if _, ok := s.Messages[primary]; ok {
		ids = append([]string{primary}, ids...)
	}
	return ids
}

// Thread returns the messages of the primary session. Without a session
// event it falls back to the first session id that has messages.
func (s *State) Thread() []models.MessageInfo {
	ids := s.SessionIDs()
	if len(ids) == 0 {
		return nil
	}
	return s.Messages[ids[0]]
}

// OrphanMessageIDs returns message ids that have parts but no message,
// ascending.
func (s *State) OrphanMessageIDs() []string {
	var ids []string
	for id := range s.Parts {
		if _, ok := s.msgGroup[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of events Events would emit.
func (s *State) Len() int {
	n := len(s.partPos) + len(s.msgSeen) + len(s.Models)
	if s.Session != nil {
		n++
	}
	if s.Diff != nil {
		n++
	}
	return n
}

// Events flattens the state into an event list that reconstructs to an
// equal state.
func (s *State) Events() []models.ShareData {
	out := make([]models.ShareData, 0, s.Len())
	if s.Session != nil {
		out = append(out, models.Session{Data: *s.Session})
	}

	// Messages go out in first-seen order so a rebuilt state breaks
	// created-time ties the same way, even after a message changes session.
	var msgs []models.MessageInfo
	for _, sid := range s.SessionIDs() {
		msgs = append(msgs, s.Messages[sid]...)
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return s.msgSeen[msgs[i].ID] < s.msgSeen[msgs[j].ID]
	})
	order := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, models.Message{Data: m})
		order = append(order, m.ID)
	}
	order = append(order, s.OrphanMessageIDs()...)
	for _, mid := range order {
		for _, p := range s.Parts[mid] {
			out = append(out, models.Part{Data: p})
		}
	}

	if s.Diff != nil {
		out = append(out, models.SessionDiff{Data: s.Diff})
	}
	for _, m := range s.Models {
		out = append(out, models.Model{Data: m})
	}
	return out
}
