package database

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"akademiku_backend/internals/configs"
	attendanceModel "akademiku_backend/internals/features/school/ledgers/attendance/model"
	gradeModel "akademiku_backend/internals/features/school/ledgers/grades/model"
	historyModel "akademiku_backend/internals/features/school/ledgers/history/model"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("🔌 Koneksi ke PostgreSQL...")

	// Catatan: kalau pakai PgBouncer, arahkan host/port ke PgBouncer dan
	// biarkan PreferSimpleProtocol=true (transaction pooling).
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  configs.DSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: configs.NewGormLogger(),
	})
	if err != nil {
		log.Fatalf("❌ Gagal konek DB: %v", err)
	}
	DB = db
	log.Println("✅ DB connected.")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// MigrateLedgers memastikan tabel engine ledger tersedia.
// Skema lain (kursus, user, dsb.) dimiliki aplikasi sekitarnya.
func MigrateLedgers() {
	if err := DB.AutoMigrate(
		&attendanceModel.AttendanceRecordModel{},
		&gradeModel.GradeContributionModel{},
		&historyModel.LedgerHistoryModel{},
	); err != nil {
		log.Fatalf("❌ Gagal migrasi tabel ledger: %v", err)
	}
	log.Println("✅ Migrasi tabel ledger selesai.")
}

func WarmUpQueries() {
	// jalankan ringan supaya koneksi/pool keisi & siap
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := ping(); err != nil {
			log.Printf("warm-up ping err: %v", err)
		}
	}()
}

func ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
