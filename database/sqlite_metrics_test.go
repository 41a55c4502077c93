package database

import (
	"errors"
	"testing"
)

func TestClassifySQLiteError_Busy(t *testing.T) {
	busy, locked := classifySQLiteError(errors.New("SQLITE_BUSY: database is locked"))
	if !busy || locked {
		t.Fatalf("expected busy=true locked=false, got busy=%v locked=%v", busy, locked)
	}
}

func TestClassifySQLiteError_Locked(t *testing.T) {
	busy, locked := classifySQLiteError(errors.New("SQLITE_LOCKED: database table is locked"))
	if busy || !locked {
		t.Fatalf("expected busy=false locked=true, got busy=%v locked=%v", busy, locked)
	}
}

func TestClassifySQLiteError_ContextErrors(t *testing.T) {
	busy, locked := classifySQLiteError(errors.New("some other failure"))
	if busy || locked {
		t.Fatalf("expected unrelated error to be ignored, got busy=%v locked=%v", busy, locked)
	}
}

func TestSlowQueryCounter(t *testing.T) {
	before := SQLiteSlowQueriesTotal()
	recordSlowQuery()
	if got := SQLiteSlowQueriesTotal(); got != before+1 {
		t.Fatalf("expected counter %d, got %d", before+1, got)
	}
}
