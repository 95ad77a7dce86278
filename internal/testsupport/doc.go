// Package testsupport provides fixtures shared by package tests: temp-dir
// configs, an opened state store and a scripted chat-completion server.
package testsupport
