// Package domain defines the core models shared by the taskdeck client.
//
// Domain models are plain values without IO dependencies:
//
//   - Task, NewTask, TaskPatch: the task resource and its request bodies
//   - TokenPair: the access/refresh credential pair
//   - DomainError: coded client errors (session, task, store)
//   - RequestError: the uniform error every HTTP call surfaces
package domain
