// Package core defines the shared contracts and value types of the Hive
// runtime: the Agent interface, the agent status machine, capability tags,
// task and subtask structures, dependency references, execution and
// aggregate results, bootstrap validation results, delegation relationship
// tracking and the runtime configuration surface.
//
// All other packages depend on core; core depends on nothing but the
// standard library.
package core
