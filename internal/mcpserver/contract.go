package mcpserver

// LetterFormat describes an archived letter record for LLM clients that
// create letters.
const LetterFormat = `# E-Surat Letter Format

A letter is either received (INCOMING, "surat masuk") or sent (OUTGOING,
"surat keluar"). The direction is fixed once the letter is recorded.

## Fields

| Field | Required | Notes |
|---|---|---|
| direction | yes | INCOMING or OUTGOING |
| referenceNumber | yes | the letter's own number, e.g. 005/UND/2026 |
| date | yes | date written on the letter, YYYY-MM-DD |
| counterpart | yes | sender of an incoming letter, recipient of an outgoing one |
| subject | yes | "perihal" |
| description | no | free text; AI analysis is prepended as an "Analisis AI:" block |
| attachments | no | list of /attachments/<name> URLs from upload_attachment, or data: URLs |

The server sets id, createdAt (unix milliseconds) and createdBy.

## Permissions

- ADMIN records both directions.
- STAF_MASUK records INCOMING letters only.
- STAF_KELUAR records OUTGOING letters only.

## Attachments

Only JPG/PNG images and PDF files are accepted, up to 10 MB each. Upload with
the upload_attachment tool and use the returned url as is.

## Disposition

Incoming letters may carry a disposition: an instruction, a date and a list of
recipients, each with a status of Menunggu, Proses or Selesai. Only
administrators choose recipients and write the instruction.
`
