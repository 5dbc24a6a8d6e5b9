// Package core holds the domain types shared by every debugkit package:
// log levels and entries with their ordered context, the records kept for
// faults, and the DomainError taxonomy.
package core
