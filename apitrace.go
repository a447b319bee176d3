package cadical

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
)

// Only one solver instance per process may echo its API calls to the file
// named by CADICAL_API_TRACE: several instances writing to the same path
// would interleave garbage. The guard is process wide and tied to solver
// construction and destruction.
var apiTraceInUse atomic.Bool

func openAPITraceFromEnv() *os.File {
	path := os.Getenv("CADICAL_API_TRACE")
	if path == "" {
		path = os.Getenv("CADICALAPITRACE")
	}
	if path == "" {
		return nil
	}
	if !apiTraceInUse.CompareAndSwap(false, true) {
		log.Fatal("can not trace API calls of two solver instances " +
			"using environment variable 'CADICAL_API_TRACE'")
	}
	f, err := os.Create(path)
	if err != nil {
		apiTraceInUse.Store(false)
		log.Fatalf("failed to open file %q to trace API calls "+
			"using environment variable 'CADICAL_API_TRACE'", path)
	}
	return f
}

func (s *Solver) trace(args ...interface{}) {
	if s.apiTraceFile == nil {
		return
	}
	for i, a := range args {
		if i > 0 {
			fmt.Fprint(s.apiTraceFile, " ")
		}
		fmt.Fprint(s.apiTraceFile, a)
	}
	fmt.Fprintln(s.apiTraceFile)
}

func (s *Solver) closeAPITrace() {
	if s.apiTraceFile == nil {
		return
	}
	s.apiTraceFile.Close()
	s.apiTraceFile = nil
	apiTraceInUse.Store(false)
}
