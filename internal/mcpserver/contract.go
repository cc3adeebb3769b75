package mcpserver

// SnapshotFormatContract describes the snapshot JSON document that
// export_collection produces and that import tooling must accept.
const SnapshotFormatContract = `# Speeddial Snapshot Format Contract

Every exported collection snapshot is a single JSON document with this shape.

## Structure

` + "```" + `json
{
  "version": "2",
  "data": {
    "websites": [
      {
        "id": "uuid",
        "name": "GitHub",
        "url": "https://github.com",
        "favicon": "https://www.google.com/s2/favicons?domain=github.com&sz=64",
        "position": {"page": 0, "order": 0},
        "tagIds": ["uuid"],
        "categoryId": "",
        "extraLinks": [{"id": "uuid", "name": "Pulls", "url": "https://github.com/pulls"}],
        "metadata": {
          "createdAt": "2026-01-15T09:30:00Z",
          "updatedAt": "2026-01-15T09:30:00Z",
          "visitCount": 0
        }
      }
    ],
    "tags": [{"id": "uuid", "name": "dev", "color": "#4f9cf9"}],
    "settings": {"gridSize": "medium", "gradient": "aurora", "showLabels": true, "openInNewTab": true}
  },
  "timestamp": "2026-01-20T12:00:00Z"
}
` + "```" + `

## Rules

1. **version** is a decimal string. The current version is "2". Older
   versions are upgraded on import; newer versions are rejected.
2. **Website names** are 1 to 50 characters after trimming whitespace.
3. **URLs** carry an explicit scheme. Bare hosts get "https://" prepended
   on entry, so exported documents always contain full URLs.
4. **Positions** are non-negative (page, order) pairs. Orders within a
   page are compacted to 0..n-1 on import.
5. **tagIds and categoryId** must reference ids present in data.tags.
   Dangling references are pruned on import rather than rejected.
6. **extraLinks** hold at most 10 entries per website, names unique
   case-insensitively within one website.
7. **settings.gridSize** is one of "small", "medium", "large". An absent
   settings object falls back to the defaults.
8. **timestamp** is the RFC 3339 UTC moment the export was taken.
`
