package postgres

import (
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/starford/esurat/internal/models"
)

// Documents stored in jsonb columns use snake_case keys like the table columns.

type dispositionDoc struct {
	Instruction string          `json:"instruction"`
	Assignments []assignmentDoc `json:"assignments"`
	Date        string          `json:"date"`
}

type assignmentDoc struct {
	Recipient string `json:"recipient"`
	Status    string `json:"status"`
}

type itemDoc struct {
	ID        string `json:"id"`
	Time      string `json:"time"`
	Location  string `json:"location"`
	Event     string `json:"event"`
	DressCode string `json:"dress_code"`
	Remarks   string `json:"remarks"`
}

func usersTable(pool *pgxpool.Pool) *table[models.User] {
	return &table[models.User]{
		pool:      pool,
		name:      "users",
		selectSQL: `SELECT id, username, name, role, password FROM users ORDER BY username`,
		insertSQL: `INSERT INTO users (id, username, name, role, password)
			VALUES (COALESCE(NULLIF($1, ''), gen_random_uuid()::text), $2, $3, $4, $5) RETURNING id`,
		updateSQL: `UPDATE users SET username = $2, name = $3, role = $4, password = $5 WHERE id = $1`,
		scan:      scanUser,
		args: func(u models.User) ([]any, error) {
			return []any{u.Username, u.Name, string(u.Role), u.Password}, nil
		},
		idOf:  func(u models.User) string { return u.ID },
		setID: func(u models.User, id string) models.User { u.ID = id; return u },
	}
}

func scanUser(row scanner) (models.User, error) {
	var u models.User
	var role string
	if err := row.Scan(&u.ID, &u.Username, &u.Name, &role, &u.Password); err != nil {
		return models.User{}, err
	}
	u.Role = models.Role(role)
	return u, nil
}

func lettersTable(pool *pgxpool.Pool) *table[models.Letter] {
	return &table[models.Letter]{
		pool: pool,
		name: "letters",
		selectSQL: `SELECT id, direction, reference_number, date, counterpart, subject, description,
			attachments, created_at, created_by, disposition, check1, check2
			FROM letters ORDER BY created_at DESC`,
		insertSQL: `INSERT INTO letters (id, direction, reference_number, date, counterpart, subject,
			description, attachments, created_at, created_by, disposition, check1, check2)
			VALUES (COALESCE(NULLIF($1, ''), gen_random_uuid()::text), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING id`,
		updateSQL: `UPDATE letters SET direction = $2, reference_number = $3, date = $4, counterpart = $5,
			subject = $6, description = $7, attachments = $8, created_at = $9, created_by = $10,
			disposition = $11, check1 = $12, check2 = $13 WHERE id = $1`,
		scan:  scanLetter,
		args:  letterArgs,
		idOf:  func(l models.Letter) string { return l.ID },
		setID: func(l models.Letter, id string) models.Letter { l.ID = id; return l },
	}
}

func scanLetter(row scanner) (models.Letter, error) {
	var (
		l           models.Letter
		direction   string
		attachments []byte
		disposition []byte
	)
	err := row.Scan(&l.ID, &direction, &l.ReferenceNumber, &l.Date, &l.Counterpart, &l.Subject,
		&l.Description, &attachments, &l.CreatedAt, &l.CreatedBy, &disposition, &l.Check1, &l.Check2)
	if err != nil {
		return models.Letter{}, err
	}
	l.Direction = models.Direction(direction)
	if l.Attachments, err = decodeAttachments(attachments); err != nil {
		return models.Letter{}, err
	}
	if l.Disposition, err = decodeDisposition(disposition); err != nil {
		return models.Letter{}, err
	}
	return l, nil
}

func letterArgs(l models.Letter) ([]any, error) {
	attachments, err := encodeAttachments(l.Attachments)
	if err != nil {
		return nil, err
	}
	disposition, err := encodeDisposition(l.Disposition)
	if err != nil {
		return nil, err
	}
	return []any{
		string(l.Direction), l.ReferenceNumber, l.Date, l.Counterpart, l.Subject, l.Description,
		attachments, l.CreatedAt, l.CreatedBy, disposition, l.Check1, l.Check2,
	}, nil
}

func agendasTable(pool *pgxpool.Pool) *table[models.Agenda] {
	return &table[models.Agenda]{
		pool: pool,
		name: "agendas",
		selectSQL: `SELECT id, date, day_date, items, signed_by, signed_nip, created_at, created_by
			FROM agendas ORDER BY created_at DESC`,
		insertSQL: `INSERT INTO agendas (id, date, day_date, items, signed_by, signed_nip, created_at, created_by)
			VALUES (COALESCE(NULLIF($1, ''), gen_random_uuid()::text), $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
		updateSQL: `UPDATE agendas SET date = $2, day_date = $3, items = $4, signed_by = $5,
			signed_nip = $6, created_at = $7, created_by = $8 WHERE id = $1`,
		scan: scanAgenda,
		args: func(a models.Agenda) ([]any, error) {
			items, err := encodeItems(a.Items)
			if err != nil {
				return nil, err
			}
			return []any{a.Date, a.DayDate, items, a.SignedBy, a.SignedNIP, a.CreatedAt, a.CreatedBy}, nil
		},
		idOf:  func(a models.Agenda) string { return a.ID },
		setID: func(a models.Agenda, id string) models.Agenda { a.ID = id; return a },
	}
}

func scanAgenda(row scanner) (models.Agenda, error) {
	var a models.Agenda
	var items []byte
	err := row.Scan(&a.ID, &a.Date, &a.DayDate, &items, &a.SignedBy, &a.SignedNIP, &a.CreatedAt, &a.CreatedBy)
	if err != nil {
		return models.Agenda{}, err
	}
	if a.Items, err = decodeItems(items); err != nil {
		return models.Agenda{}, err
	}
	return a, nil
}

func encodeAttachments(list []string) ([]byte, error) {
	if list == nil {
		list = []string{}
	}
	return json.Marshal(list)
}

func decodeAttachments(raw []byte) ([]string, error) {
	var list []string
	if len(raw) == 0 {
		return list, nil
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list, nil
}

func encodeDisposition(d *models.Disposition) ([]byte, error) {
	if d == nil {
		return nil, nil
	}
	doc := dispositionDoc{Instruction: d.Instruction, Date: d.Date}
	for _, a := range d.Assignments {
		doc.Assignments = append(doc.Assignments, assignmentDoc{Recipient: a.Recipient, Status: string(a.Status)})
	}
	if doc.Assignments == nil {
		doc.Assignments = []assignmentDoc{}
	}
	return json.Marshal(doc)
}

func decodeDisposition(raw []byte) (*models.Disposition, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var doc dispositionDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	d := &models.Disposition{Instruction: doc.Instruction, Date: doc.Date}
	for _, a := range doc.Assignments {
		d.Assignments = append(d.Assignments, models.Assignment{Recipient: a.Recipient, Status: models.AssignmentStatus(a.Status)})
	}
	return d, nil
}

func encodeItems(items []models.AgendaItem) ([]byte, error) {
	docs := make([]itemDoc, 0, len(items))
	for _, it := range items {
		docs = append(docs, itemDoc{
			ID: it.ID, Time: it.Time, Location: it.Location, Event: it.Event,
			DressCode: it.DressCode, Remarks: it.Remarks,
		})
	}
	return json.Marshal(docs)
}

func decodeItems(raw []byte) ([]models.AgendaItem, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var docs []itemDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	var items []models.AgendaItem
	for _, d := range docs {
		items = append(items, models.AgendaItem{
			ID: d.ID, Time: d.Time, Location: d.Location, Event: d.Event,
			DressCode: d.DressCode, Remarks: d.Remarks,
		})
	}
	return items, nil
}
