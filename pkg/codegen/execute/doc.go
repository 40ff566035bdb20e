// Package execute runs protoc invocations as local processes.
//
// Output is streamed line by line to the injected logger: stdout at info
// and stderr at warn, so compiler diagnostics show up as they happen.
// A process that starts and exits non-zero is reported as false with a nil
// error. An error means the process could not be started at all.
package execute
