/*
Package ports defines the driven ports (interfaces) netspec stores specs through.

These interfaces decouple the CLI, HTTP and MCP surfaces from storage, so the
same commands work against memory, a directory, Redis, SQLite or a loam
workspace.

# Key Interfaces

  - SpecLoader: reads specs by name and lists what is stored.
  - SpecStore: a SpecLoader that also saves and deletes.

RunSpecStoreContract is the shared test suite every SpecStore adapter runs.
*/
package ports
