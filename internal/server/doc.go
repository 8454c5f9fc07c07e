// Package server implements the MCP (Model Context Protocol) server for the
// collage assembler.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - collage_select: Replace the image selection
//   - collage_build: Assemble the selection into a grid and return its data URL
//   - collage_result: Inspect the latest collage, optionally sampling a pixel
//   - collage_cast: Hand the latest collage to the cast sink
//   - collage_status: Report idle/building/ready state
//   - collage_reset: Drop selection, cache and result
//   - image_info: Read dimensions and format of an image file
//
// All tools share one collage.Assembler, so a selection made with
// collage_select is what a later argument-less collage_build assembles.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// Lines that are not valid JSON get a -32700 parse error with a null id.
//
// # Usage
//
//	asm := collage.New(opts)
//	srv := server.New(asm, server.WithLogger(logger))
//	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
package server
