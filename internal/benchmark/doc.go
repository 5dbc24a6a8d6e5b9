// Package benchmark implements named timing and memory sessions.
//
// A session is started by name, stopped by name, and read back as a Result
// holding elapsed wall time, the memory delta across the session, and the
// peak memory observed. Memory is read from a Probe: the Go heap by default,
// or the process resident set size through gopsutil. An optional Sampler
// polls the probe in the background so peaks between start and stop are not
// lost.
package benchmark
