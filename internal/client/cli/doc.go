// Package cli hosts the upload pipeline on the command line.
//
// App reads the files named on the command line, registers them as one
// batch, and runs upload rounds until every attachment is stored, the
// retry budget is spent, or the batch is torn down. A status table is
// printed at the end. The table plays the part of the upload dialog: it
// shows the file name, a human readable size and the upload status.
package cli
