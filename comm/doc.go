// Package comm is the in-process message-passing layer between agents.
//
// A Bus is constructed explicitly at process bootstrap and passed by
// reference; agents join it to obtain a Peer, which carries their handler
// dispatch table, their caller-side relationship ledger and their received
// knowledge base. Peers delegate point-to-point with a per-call timeout,
// broadcast concurrently to many targets and negotiate the built-in task
// types: liveness checks, collaboration, parameter optimization and
// knowledge sharing.
package comm
