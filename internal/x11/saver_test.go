package x11

import (
	"errors"
	"testing"
)

type saverCall struct {
	timeout, interval   int16
	blanking, exposures byte
}

func testSaver(queryErr error) (*saver, *[]saverCall) {
	calls := &[]saverCall{}
	s := &saver{
		query: func() (int16, int16, byte, byte, error) {
			return 600, 60, 1, 1, queryErr
		},
		apply: func(timeout, interval int16, blanking, exposures byte) {
			*calls = append(*calls, saverCall{timeout, interval, blanking, exposures})
		},
	}
	return s, calls
}

func TestSaver_FirstDisableSavesAndLastReleaseRestores(t *testing.T) {
	s, calls := testSaver(nil)

	s.disable()
	s.disable()
	if len(*calls) != 1 {
		t.Fatalf("apply called %d times after two disables, want 1", len(*calls))
	}
	if (*calls)[0] != (saverCall{0, 0, 0, 0}) {
		t.Fatalf("disable applied %+v, want all-off", (*calls)[0])
	}

	s.release()
	if len(*calls) != 1 {
		t.Fatalf("intermediate release applied settings: %+v", *calls)
	}
	s.release()
	if len(*calls) != 2 {
		t.Fatalf("apply called %d times after final release, want 2", len(*calls))
	}
	if (*calls)[1] != (saverCall{600, 60, 1, 1}) {
		t.Fatalf("final release applied %+v, want saved settings", (*calls)[1])
	}
}

func TestSaver_UnbalancedReleaseIgnored(t *testing.T) {
	s, calls := testSaver(nil)
	s.release()
	if len(*calls) != 0 {
		t.Fatalf("release without a hold applied settings: %+v", *calls)
	}
}

func TestSaver_RestoreForcesSettingsBack(t *testing.T) {
	s, calls := testSaver(nil)

	s.disable()
	s.disable()
	s.restore()
	if len(*calls) != 2 || (*calls)[1] != (saverCall{600, 60, 1, 1}) {
		t.Fatalf("restore calls = %+v, want saved settings applied once", *calls)
	}

	// All holds are gone; further releases must not touch the server.
	s.release()
	if len(*calls) != 2 {
		t.Fatalf("release after restore applied settings: %+v", *calls)
	}
}

func TestSaver_QueryFailureStillDisables(t *testing.T) {
	s, calls := testSaver(errors.New("connection lost"))

	s.disable()
	if len(*calls) != 1 {
		t.Fatalf("apply called %d times, want 1", len(*calls))
	}
	s.release()
	// Nothing was saved, so nothing can be restored.
	if len(*calls) != 1 {
		t.Fatalf("release restored unsaved settings: %+v", *calls)
	}
}
