// Package planner holds the pure decision core: the bitrate budget
// calculator, the acceleration/filter plan selector, and the encode job
// planner that composes them. Everything here is a deterministic function
// of configuration and probed metadata; process execution and filesystem
// effects live in the encoder and pipeline packages.
package planner
