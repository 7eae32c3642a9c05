package repository

import (
	"finance_webapp/internal/domain"
)

// Projection names one of the secondary lookup paths. The value doubles as
// the DynamoDB index name.
type Projection string

const (
	ProjectionYearMonth Projection = "GSI1"
	ProjectionDirection Projection = "GSI2"
	ProjectionMode      Projection = "GSI3"
)

const (
	attrPK = "PK"
	attrSK = "SK"
)

// BuildPrimaryKey returns the partition key holding every record of a user.
func BuildPrimaryKey(userID string) string {
	return "U#" + userID
}

// BuildSortKey orders records chronologically inside the partition. The
// timestamp is fixed width so byte order equals time order; the id breaks ties.
func BuildSortKey(timestamp, id string) string {
	return "T#" + timestamp + "#" + id
}

// ProjectionKey returns the partition key of a projection for one value,
// e.g. U#42#YM#2024-03, U#42#DIR#C or U#42#MODE#salary.
func ProjectionKey(p Projection, userID, value string) string {
	switch p {
	case ProjectionYearMonth:
		return BuildPrimaryKey(userID) + "#YM#" + value
	case ProjectionDirection:
		return BuildPrimaryKey(userID) + "#DIR#" + value
	case ProjectionMode:
		return BuildPrimaryKey(userID) + "#MODE#" + value
	}
	return ""
}

// BuildKeys fills the primary and projection keys of tx from its attributes.
// It is called on every full write so the projections never drift.
func BuildKeys(tx *domain.Transaction) {
	tx.PK = BuildPrimaryKey(tx.UserID)
	tx.SK = BuildSortKey(tx.Timestamp, tx.ID)

	tx.GSI1PK = ProjectionKey(ProjectionYearMonth, tx.UserID, tx.YearMonth)
	tx.GSI1SK = tx.SK
	tx.GSI2PK = ProjectionKey(ProjectionDirection, tx.UserID, tx.Direction.Code())
	tx.GSI2SK = tx.SK
	tx.GSI3PK = ProjectionKey(ProjectionMode, tx.UserID, string(tx.Mode))
	tx.GSI3SK = tx.SK
}

// attributes returns the partition and sort key attribute names of p.
func (p Projection) attributes() (pk, sk string) {
	switch p {
	case ProjectionYearMonth:
		return "GSI1PK", "GSI1SK"
	case ProjectionDirection:
		return "GSI2PK", "GSI2SK"
	case ProjectionMode:
		return "GSI3PK", "GSI3SK"
	}
	return "", ""
}

func (p Projection) Valid() bool {
	pk, _ := p.attributes()
	return pk != ""
}

// projectionPK reads the projection partition key stored on tx.
func projectionPK(tx *domain.Transaction, p Projection) string {
	switch p {
	case ProjectionYearMonth:
		return tx.GSI1PK
	case ProjectionDirection:
		return tx.GSI2PK
	case ProjectionMode:
		return tx.GSI3PK
	}
	return ""
}
