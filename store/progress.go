package store

import (
	"time"

	"github.com/cheggaaa/pb/v3"

	"github.com/thechriswalker/go-verifier/verifier"
)

// Progress is a progress bar over the verifications of a run, or nothing
// at all when disabled
type Progress struct {
	bar *pb.ProgressBar
}

// MaybeProgress creates a bar for n verifications if show is set
func MaybeProgress(n int, show bool) *Progress {
	mp := &Progress{}
	if show && n > 0 {
		mp.bar = pb.ProgressBarTemplate(`{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }} {{etime . }}`).New(n)
		mp.bar.Set("prefix", "verifications ")
		mp.bar.SetRefreshRate(250 * time.Millisecond)
	}
	return mp
}

func (mp *Progress) Start() {
	if mp.bar != nil {
		mp.bar.Start()
	}
}

// Observer advances the bar once per recorded outcome
func (mp *Progress) Observer() verifier.Observer {
	return func(*verifier.Entry, verifier.Outcome) {
		if mp.bar != nil {
			mp.bar.Increment()
		}
	}
}

func (mp *Progress) Finish() {
	if mp.bar != nil {
		mp.bar.Finish()
	}
}
