package probe

import (
	"runtime"
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

func TestDetect(t *testing.T) {
	c := Detect()
	if c.LogicalCPUs < 1 || c.MaxProcs != runtime.GOMAXPROCS(0) {
		t.Fatalf("探测结果异常: %+v", c)
	}
	if c.PhysicalCores < 0 || c.ThreadsPerCore < 0 {
		t.Fatalf("cpuid 结果异常: %+v", c)
	}
}

func TestSelect(t *testing.T) {
	cv.Convey("执行器选择遵循模式与能力探测", t, func() {
		multi := Capabilities{MaxProcs: 8}
		single := Capabilities{MaxProcs: 1}

		cv.Convey("auto 在多核时选 static，单核时退化为 serial", func() {
			name, err := Select("auto", multi)
			cv.So(err, cv.ShouldBeNil)
			cv.So(name, cv.ShouldEqual, "static")
			name, err = Select("", single)
			cv.So(err, cv.ShouldBeNil)
			cv.So(name, cv.ShouldEqual, "serial")
		})
		cv.Convey("显式模式不受探测影响", func() {
			name, _ := Select("parallel", single)
			cv.So(name, cv.ShouldEqual, "static")
			name, _ = Select(" SERIAL ", multi)
			cv.So(name, cv.ShouldEqual, "serial")
		})
		cv.Convey("未知模式报错", func() {
			_, err := Select("dynamic", multi)
			cv.So(err, cv.ShouldNotBeNil)
			cv.So(ValidMode("dynamic"), cv.ShouldBeFalse)
			cv.So(ValidMode("auto"), cv.ShouldBeTrue)
		})
	})
}
