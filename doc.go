// Package debugkit is an in-process diagnostics core.
//
// A Debugger captures structured log entries at eight levels, dispatches
// them to the sink selected by the log_driver setting, runs named timing
// and memory benchmarks, and intercepts runtime faults through Guard,
// escalating fatal ones to a critical log entry, the registered fatal
// callbacks and process exit.
//
// Construct one explicitly with New, or use the lazily built process-wide
// instance returned by Shared:
//
//	d := debugkit.Shared()
//	d.Info("service started", "port", 8080)
//	d.StartBenchmark("warmup")
//	...
//	res, _ := d.StopBenchmark("warmup")
//	d.Debug("warmup done", "result", res.String())
package debugkit
