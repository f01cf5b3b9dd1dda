// Package api defines the HTTP wire types shared by the daemon and the CLI,
// and the client the CLI uses to reach the daemon.
//
// AnalyzeResponse is the single reply shape for /api/analyze: ok, review, and
// transcript on success; ok:false with an error code and optional details on
// failure. Client.Analyze turns a failure into an *Error whose message is the
// joined details, else the code, else "Analyze failed".
package api
