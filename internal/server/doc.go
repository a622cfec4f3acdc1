// Package server implements the TCP listener for tcpresponder.
//
// # Architecture
//
//   - Server: binds the listening socket, runs the accept loop and tracks live clients
//   - Client: owns one accepted connection and runs a session.Driver for it in its own goroutine
//
// Sessions share nothing but the operator console and the operator line
// reader. Output from concurrent sessions interleaves per message, and each
// line of operator input goes to whichever session asks for it first.
//
// # Lifecycle
//
// A session ends when the peer closes the connection, when a read or write
// fails, or when a payload cannot be rendered. Only that connection is
// closed; the listener keeps accepting.
//
// Usage
//
//	con := console.New(os.Stdout, true)
//	srv, err := server.NewServer(cfg, con, console.NewLineReader(os.Stdin))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	<-ctx.Done()
//	srv.Stop()
package server
