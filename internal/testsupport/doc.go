// Package testsupport provides shared scaffolding for texlapse tests: temp
// configs, a scripted git stub, and fake stage implementations that write
// deterministic fixture files instead of invoking real binaries.
package testsupport
