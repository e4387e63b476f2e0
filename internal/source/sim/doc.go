// Package sim provides an in-process simulated data source.
//
// It implements the source capability contract with deterministic waveform
// generators matching the node ids of the Prosys Simulation Server the
// logger was originally written against (constant, counter, random,
// sawtooth, sinusoid, square, triangle, plus the MyLevel/MySwitch/Double
// demo nodes). It exists so the binary produces plausible CSV output
// without a real OPC UA server, and so wiring can be exercised in tests
// without network access.
package sim
