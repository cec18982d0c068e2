package models

// AttendanceRecord: empty TimeIn means not clocked in yet, empty TimeOut means
// the shift is still open.
type AttendanceRecord struct {
	StaffName string `json:"staffName" gorm:"size:100;not null"`
	Date      string `json:"date" gorm:"size:10;not null"`
	TimeIn    string `json:"timeIn" gorm:"size:8"`
	TimeOut   string `json:"timeOut" gorm:"size:8"`
}

func (AttendanceRecord) TableName() string { return "cafe_attendance" }

func (a AttendanceRecord) Open() bool {
	return a.TimeIn != "" && a.TimeOut == ""
}
