package model

// testEnv is a fixed-time Env that records storage checks.
type testEnv struct {
	now        uint64
	storageErr error
	checked    []Sized
}

func (e *testEnv) Now() uint64 { return e.now }

func (e *testEnv) CheckStorage(s Sized) error {
	e.checked = append(e.checked, s)
	if s.BaseStorage()+s.DynamicSize() > s.MaxStorage() {
		return errTooBig
	}
	return e.storageErr
}

type sentinel string

func (s sentinel) Error() string { return string(s) }

const errTooBig = sentinel("too big")

// day0 is Monday 1970-01-05 00:00 UTC.
const day0 = 4 * NanosPerDay

func newEnv() *testEnv {
	return &testEnv{now: day0 + 10*NanosPerDay}
}
