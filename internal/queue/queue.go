package queue

// TrackState is the playback state of a queued track.
type TrackState int

const (
	Ready TrackState = iota
	Playing
	Done
	Failed
)

// Track is one entry of the queue.
type Track struct {
	Title string
	Path  string
	State TrackState
}

// Queue is an ordered list of tracks with a cursor. It is only touched from
// the Bubble Tea Update loop.
type Queue struct {
	tracks  []Track
	current int
}

// New creates a Queue positioned on the first track.
func New(tracks []Track) *Queue {
	return &Queue{tracks: tracks}
}

// Current returns the track under the cursor, or nil.
func (q *Queue) Current() *Track {
	return q.Track(q.current)
}

// Next returns the track after the cursor, or nil at the end.
func (q *Queue) Next() *Track {
	return q.Track(q.current + 1)
}

// Advance moves the cursor forward. It returns false at the end.
func (q *Queue) Advance() bool {
	if q.current+1 >= len(q.tracks) {
		return false
	}
	q.current++
	return true
}

// Previous moves the cursor back. It returns false at the start.
func (q *Queue) Previous() bool {
	if q.current <= 0 {
		return false
	}
	q.current--
	return true
}

// WrapToStart parks the cursor before the first track so the next Advance
// lands on track 0.
func (q *Queue) WrapToStart() {
	q.current = -1
}

// Len returns the number of tracks.
func (q *Queue) Len() int { return len(q.tracks) }

// CurrentIndex returns the cursor position.
func (q *Queue) CurrentIndex() int { return q.current }

// SetCurrentIndex moves the cursor to i when it is in range.
func (q *Queue) SetCurrentIndex(i int) {
	if i >= 0 && i < len(q.tracks) {
		q.current = i
	}
}

// SetTrackState updates the state of track i.
func (q *Queue) SetTrackState(i int, state TrackState) {
	if t := q.Track(i); t != nil {
		t.State = state
	}
}

// Track returns track i, or nil when out of range.
func (q *Queue) Track(i int) *Track {
	if i < 0 || i >= len(q.tracks) {
		return nil
	}
	return &q.tracks[i]
}
