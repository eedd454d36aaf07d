package memory

import (
	"time"

	"github.com/agriconnect/platform/internal/core/domain"
)

// Fixture rows seeded into every fresh Store. Ids stay well below
// firstSyntheticID so created rows are always distinguishable. Some records
// carry denormalized display fields (author_name, sector_name) the way the
// joined queries they stand in for would.

func ts(value string) time.Time {
	t, _ := time.Parse(time.RFC3339, value)
	return t
}

func ptr[T any](v T) *T { return &v }

func (s *Store) loadFixtures() {
	sectors := []domain.Sector{
		{ID: 1, Name: "AgroBank", Type: "Finance", Contact: "contact@agrobank.com",
			Region: "National", Description: "Micro-financing and crop insurance services"},
		{ID: 2, Name: "Harvest Logistics", Type: "Logistics", Contact: "support@harvestlogistics.com",
			Region: "North India", Description: "Cold chain and transportation partners"},
		{ID: 3, Name: "Seed Innovators", Type: "Technology", Contact: "hello@seedinnovators.com",
			Region: "West India", Description: "R&D for climate resilient seeds"},
	}
	for _, sec := range sectors {
		s.tables["sectors"] = append(s.tables["sectors"], sectorRecord(sec))
	}

	resources := []domain.Resource{
		{ID: 1, Title: "Organic Farming Guide", Category: "Guides",
			Description: "Complete guide to organic farming practices",
			Link:        "https://example.com/organic-guide",
			FileType:    domain.FileTypeDocument, CreatedBy: 2, CreatedAt: ts("2024-01-15T10:00:00Z")},
		{ID: 2, Title: "Crop Insurance Schemes", Category: "Finance",
			Description: "Government crop insurance schemes explained",
			FileName:    "insurance_schemes.pdf",
			FileType:    domain.FileTypeDocument, CreatedBy: 2, CreatedAt: ts("2024-01-10T14:30:00Z")},
		{ID: 3, Title: "Drip Irrigation Manual", Category: "Technology",
			Description: "Installation and maintenance guide for drip irrigation",
			Link:        "https://example.com/drip-irrigation",
			FileType:    domain.FileTypeVideo, CreatedBy: 3, CreatedAt: ts("2024-01-08T09:15:00Z")},
	}
	authors := map[int64]string{2: "Ravi Kumar", 3: "Meera Patel"}
	for _, r := range resources {
		s.tables["resources"] = append(s.tables["resources"], resourceRecord(r, authors[r.CreatedBy]))
	}

	events := []domain.Event{
		{ID: 1, Name: "Organic Farming Workshop",
			Description: "Learn organic farming techniques from experts",
			StartDate:   ts("2024-02-15T09:00:00Z"), EndDate: ptr(ts("2024-02-15T17:00:00Z")),
			Location: "Community Center, Pune", SectorID: ptr(int64(1)),
			CreatedBy: 2, CreatedAt: ts("2024-01-20T11:00:00Z")},
		{ID: 2, Name: "Financial Literacy Camp",
			Description: "Understanding loans and insurance for farmers",
			StartDate:   ts("2024-02-20T10:00:00Z"), EndDate: ptr(ts("2024-02-20T16:00:00Z")),
			Location: "District Hall, Nashik", SectorID: ptr(int64(1)),
			CreatedBy: 3, CreatedAt: ts("2024-01-18T13:30:00Z")},
	}
	for _, e := range events {
		s.tables["events"] = append(s.tables["events"], eventRecord(e, authors[e.CreatedBy]))
	}

	forums := []domain.Forum{
		{ID: 1, Title: "Pest Control Discussion", Sector: "Technology",
			Description: "Share experiences with organic pest control methods",
			CreatedBy:   2, CreatedAt: ts("2024-01-12T08:00:00Z")},
		{ID: 2, Title: "Water Conservation Techniques", Sector: "Technology",
			Description: "Discuss efficient water usage in agriculture",
			CreatedBy:   3, CreatedAt: ts("2024-01-11T16:45:00Z")},
	}
	for _, f := range forums {
		s.tables["forums"] = append(s.tables["forums"], forumRecord(f, authors[f.CreatedBy]))
	}

	notifications := []domain.Notification{
		{ID: 1, Title: "New Government Scheme",
			Message: "PM Kisan Samman Nidhi next installment released",
			Level:   domain.LevelInfo, CreatedAt: ts("2024-01-25T10:30:00Z")},
		{ID: 2, UserID: ptr(int64(2)), Title: "Workshop Reminder",
			Message: "Organic farming workshop tomorrow at 9 AM",
			Level:   domain.LevelReminder, CreatedAt: ts("2024-02-14T18:00:00Z")},
	}
	for _, n := range notifications {
		name := "All users"
		if n.UserID != nil {
			name = authors[*n.UserID]
		}
		s.tables["notifications"] = append(s.tables["notifications"], notificationRecord(n, name))
	}

	connections := []domain.SectorConnection{
		{ID: 1, UserID: 2, SectorID: 1, Status: domain.ConnectionActive,
			Notes: "Regular customer for crop insurance", CreatedAt: ts("2024-01-05T12:00:00Z")},
		{ID: 2, UserID: 2, SectorID: 2, Status: domain.ConnectionPending,
			Notes: "Interested in cold storage facilities", CreatedAt: ts("2024-01-22T15:30:00Z")},
	}
	sectorNames := map[int64]domain.Sector{}
	for _, sec := range sectors {
		sectorNames[sec.ID] = sec
	}
	for _, c := range connections {
		sec := sectorNames[c.SectorID]
		s.tables["sector_connections"] = append(s.tables["sector_connections"],
			connectionRecord(c, authors[c.UserID], sec.Name, sec.Type))
	}

	for table := range s.tables {
		s.reseedLocked(table)
	}
	// Tables without fixtures still get counters from firstSyntheticID.
	for _, table := range []string{"users", "forum_posts", "content"} {
		s.ensureTable(table)
	}
}

func sectorRecord(sec domain.Sector) Record {
	return Record{
		"id": sec.ID, "name": sec.Name, "type": sec.Type,
		"contact": sec.Contact, "region": sec.Region, "description": sec.Description,
	}
}

func resourceRecord(r domain.Resource, author string) Record {
	rec := Record{
		"id": r.ID, "title": r.Title, "category": r.Category,
		"description": r.Description, "file_type": r.FileType,
		"link": nil, "file_name": nil, "file_blob": nil,
		"created_by": r.CreatedBy, "author_name": author,
		"created_at": r.CreatedAt.Format(time.RFC3339),
	}
	if r.Link != "" {
		rec["link"] = r.Link
	}
	if r.FileName != "" {
		rec["file_name"] = r.FileName
	}
	if r.FileBlob != "" {
		rec["file_blob"] = r.FileBlob
	}
	return rec
}

func eventRecord(e domain.Event, creator string) Record {
	rec := Record{
		"id": e.ID, "name": e.Name, "description": e.Description,
		"start_date": e.StartDate.Format(time.RFC3339),
		"end_date":   nil, "location": e.Location,
		"sector_id": nil, "created_by": e.CreatedBy, "creator_name": creator,
		"created_at": e.CreatedAt.Format(time.RFC3339),
	}
	if e.EndDate != nil {
		rec["end_date"] = e.EndDate.Format(time.RFC3339)
	}
	if e.SectorID != nil {
		rec["sector_id"] = *e.SectorID
	}
	return rec
}

func forumRecord(f domain.Forum, author string) Record {
	return Record{
		"id": f.ID, "title": f.Title, "sector": f.Sector,
		"description": f.Description, "created_by": f.CreatedBy,
		"author_name": author, "created_at": f.CreatedAt.Format(time.RFC3339),
	}
}

func notificationRecord(n domain.Notification, userName string) Record {
	rec := Record{
		"id": n.ID, "user_id": nil, "title": n.Title, "message": n.Message,
		"level": n.Level, "user_name": userName,
		"created_at": n.CreatedAt.Format(time.RFC3339),
	}
	if n.UserID != nil {
		rec["user_id"] = *n.UserID
	}
	return rec
}

func connectionRecord(c domain.SectorConnection, userName, sectorName, sectorType string) Record {
	return Record{
		"id": c.ID, "user_id": c.UserID, "sector_id": c.SectorID,
		"status": c.Status, "notes": c.Notes,
		"user_name": userName, "sector_name": sectorName, "sector_type": sectorType,
		"created_at": c.CreatedAt.Format(time.RFC3339),
	}
}
