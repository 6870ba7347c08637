// Package models defines the entities that flow through a single upload.
//
// All values are request-scoped: they are built when an upload starts and discarded when it finishes.
// Nothing here is persisted.
//
//   - [Account] : Discogs username and personal token; [Account.String] never prints the token
//   - [Folder] : a collection folder, identified by the service-assigned integer id
//   - [Page] : one page of a folder listing with the reported total page count
//   - [UploadRequest] : the account, target folder and ordered release ids
//   - [PlanEntry] : a requested id tagged [Skip] or [Add]
//   - [ItemOutcome] : the final [AlreadyPresent], [Added] or [Failed] result for one id
package models
