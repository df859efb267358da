// Package commands holds the cobra command tree for the tally binary:
//
//	tally run       interactive console over the reactive tracker
//	tally summary   load once, print totals and exit
//	tally import    copy a seed CSV into the SQLite store
//	tally watch     print change events from the AMQP exchange
package commands
