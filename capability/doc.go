// Package capability classifies the device a page is rendered on.
//
// Two detectors run against an [Environment]:
//
//   - [DetectGPU] reads the WebGL renderer strings and limits and produces a
//     [GPUProfile] with a vendor, mobile/integrated/low-end flags and the
//     context creation settings to request.
//   - [DetectCPU] reads the logical core count and user agent, runs a short
//     throttle microbenchmark and produces a [CPUProfile] with a recommended
//     worker count.
//
// Neither detector returns an error. Any probe failure, including the total
// absence of a graphics context, yields a conservative low-end profile. An
// unknown vendor is a normal outcome.
//
// Environments are provided for three hosts: [ReportEnvironment] replays a
// [ProbeReport] posted by a browser, NativeEnvironment inspects the local
// machine, and BrowserEnvironment (js/wasm builds) probes the page directly.
package capability
