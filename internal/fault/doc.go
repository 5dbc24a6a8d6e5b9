// Package fault intercepts runtime faults and escalates the fatal ones.
//
// A Fault carries a severity from a classic bitmask. HandleError records and
// logs faults selected by the error_reporting mask; fatal severities are
// escalated to HandleException, which records an exception, logs it at the
// critical level, runs every OnFatal callback, optionally writes a crash
// dump, and exits with status 1. Guard is the boundary that feeds returned
// faults and recovered panics into the interceptor.
package fault
