package mapping

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Album struct {
	AlbumId  int64  `dbfield:"AlbumId"`
	Title    string `dbfield:"Title"`
	ArtistId int64  `dbfield:"ArtistId"`
}

var albumColumns = []string{"AlbumId", "Title", "ArtistId"}

type Employee struct {
	EmployeeId int64     `dbfield:"EmployeeId"`
	LastName   string    `dbfield:"LastName"`
	FirstName  string    `dbfield:"FirstName"`
	Title      string    `dbfield:"Title"`
	ReportsTo  *int64    `dbfield:"ReportsTo"`
	HireDate   time.Time `dbfield:"HireDate"`
}

var employeeColumns = []string{"EmployeeId", "LastName", "FirstName", "Title", "ReportsTo", "HireDate"}

// InvalidEmployee EmployeeId 声明为 string，而数据库返回整数
type InvalidEmployee struct {
	EmployeeId string `dbfield:"EmployeeId"`
	LastName   string `dbfield:"LastName"`
}

// InvalidInvoice 映射到结果集中不存在的列
type InvalidInvoice struct {
	InvoiceId  int64 `dbfield:"EmployeeId"`
	CustomerId int64 `dbfield:"CustomerId"`
}

// Invoice 覆写 InvoiceDate 与 InvoiceId 的水合
type Invoice struct {
	InvoiceId    int64     `dbfield:"InvoiceId"`
	CustomerId   int64     `dbfield:"CustomerId"`
	InvoiceDate  time.Time `dbfield:"InvoiceDate"`
	BillingState *string   `dbfield:"BillingState"`

	receivedDate any
}

func (i *Invoice) ShouldOverrideHydration(field string) bool {
	return field == "InvoiceDate" || field == "InvoiceId"
}

func (i *Invoice) OverrideHydration(field string, value any) any {
	switch field {
	case "InvoiceDate":
		i.receivedDate = value
		return value.(time.Time).Add(24 * time.Hour)
	case "InvoiceId":
		return 1000 + value.(int64)
	}
	return value
}

// BooleanTest 在数据库中以整数保存 bool
type BooleanTest struct {
	Id           int64 `dbfield:"id"`
	BooleanValue bool  `dbfield:"boolean_value"`
}

func (b *BooleanTest) ShouldOverrideHydration(field string) bool { return field == "BooleanValue" }

func (b *BooleanTest) OverrideHydration(field string, value any) any {
	switch v := value.(type) {
	case int64:
		return v == 1
	case bool:
		return v
	}
	return value
}

func (b *BooleanTest) ShouldOverrideSerialization(field string) bool { return field == "BooleanValue" }

func (b *BooleanTest) OverrideSerialization(field string, value any) any {
	if value.(bool) {
		return int64(1)
	}
	return int64(0)
}

// NullingOverride 覆写后返回 nil，不可空字段仍应报错
type NullingOverride struct {
	Count int64 `dbfield:"Count"`
}

func (n *NullingOverride) ShouldOverrideHydration(string) bool { return true }
func (n *NullingOverride) OverrideHydration(string, any) any   { return nil }

type Audit struct {
	CreatedBy string     `dbfield:"created_by"`
	UpdatedAt *time.Time `dbfield:"updated_at"`
}

type Genre string

// Track 覆盖嵌入结构体、参数别名、忽略字段与各种可空类型
type Track struct {
	Audit
	*Meta

	TrackId   int64          `dbfield:"TrackId,param=Id"`
	Name      string         `dbfield:""`
	Composer  sql.NullString `dbfield:"Composer"`
	Genre     Genre          `dbfield:"Genre"`
	Bytes     []byte         `dbfield:"Bytes"`
	Reference uuid.UUID      `dbfield:"Reference"`
	Price     float64        `dbfield:"UnitPrice"`
	Skipped   string         `dbfield:"-"`
	Untagged  string
	internal  string `dbfield:"internal"`
}

type Meta struct {
	Milliseconds int32 `dbfield:"Milliseconds"`
}
