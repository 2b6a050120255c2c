package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHeatSpike    BookmarkType = "heat_spike"
	BookmarkFirstContact BookmarkType = "first_contact"
	BookmarkContactLost  BookmarkType = "contact_lost"
	BookmarkRunningCold  BookmarkType = "running_cold"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector flags notable windows: heat spikes, the first full
// detection after a quiet spell, losing every contact, and a world that
// has gone thermally quiet.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	hadContact   bool
	coldWindows  int
	coldReported bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkHeatSpike(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkContact(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkRunningCold(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// checkHeatSpike fires when the hottest grid is over twice the rolling
// average of previous maxima.
func (bd *BookmarkDetector) checkHeatSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	maxima := make([]float64, len(history))
	for i, h := range history {
		maxima[i] = h.Thermal.GridHeatMax
	}
	avg := stat.Mean(maxima, nil)
	if avg <= 0 {
		return nil
	}

	current := stats.Thermal.GridHeatMax
	if current > avg*2 {
		return &Bookmark{
			Type:        BookmarkHeatSpike,
			Tick:        stats.Thermal.WindowEndTick,
			Description: fmt.Sprintf("Grid %d peaked at %.1f, %.1fx average max (%.1f)", stats.Thermal.HottestGrid, current, current/avg, avg),
		}
	}
	return nil
}

// checkContact tracks the transition between having full detections and none.
func (bd *BookmarkDetector) checkContact(stats WindowStats) *Bookmark {
	det := stats.Detection
	if det.Sweeps == 0 {
		return nil
	}

	has := det.Detected > 0
	defer func() { bd.hadContact = has }()

	switch {
	case has && !bd.hadContact:
		return &Bookmark{
			Type:        BookmarkFirstContact,
			Tick:        det.WindowEndTick,
			Description: fmt.Sprintf("%d full detections, nearest mean range %.0f", det.Detected, det.MeanContactRange),
		}
	case !has && bd.hadContact:
		return &Bookmark{
			Type:        BookmarkContactLost,
			Tick:        det.WindowEndTick,
			Description: fmt.Sprintf("No full detections over %d sweeps (%d partial)", det.Sweeps, det.PartialDetected),
		}
	}
	return nil
}

// checkRunningCold fires once after three consecutive windows in which no
// thruster fired and the hottest grid kept cooling.
func (bd *BookmarkDetector) checkRunningCold(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	cooling := len(history) > 0 && stats.Thermal.FiringThrusters == 0
	if cooling {
		last := history[(bd.historyIdx-1+bd.historySize)%bd.historySize]
		cooling = stats.Thermal.GridHeatMax < last.Thermal.GridHeatMax
	}

	if !cooling {
		bd.coldWindows = 0
		bd.coldReported = false
		return nil
	}

	bd.coldWindows++
	if bd.coldWindows >= 3 && !bd.coldReported {
		bd.coldReported = true
		return &Bookmark{
			Type:        BookmarkRunningCold,
			Tick:        stats.Thermal.WindowEndTick,
			Description: fmt.Sprintf("No burns for %d windows, hottest grid down to %.1f", bd.coldWindows, stats.Thermal.GridHeatMax),
		}
	}
	return nil
}
