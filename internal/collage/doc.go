// Package collage assembles selected images into a single grid collage.
//
// An Assembler holds the current selection, an off-screen Canvas and the
// latest Result. A build lays the images out row-major in square cells,
// decodes each one under a deadline, stretches it to fill its cell and
// encodes the canvas (JPEG by default). The result can be handed to a Sink
// for casting; the bundled LogSink only announces it.
//
// # Lifecycle
//
//	Idle --Build--> Building --ok--> Ready --Build--> Building
//	                    \--error--> Idle
//
// A build that starts while another is running fails with ErrBusy.
//
// # Failure Handling
//
// A decode that fails or exceeds Options.DecodeTimeout produces a
// *DecodeError. Under AbortOnError the build stops; under SkipFailed the
// cell keeps the background colour and the failure is listed in
// Result.Skipped.
package collage
