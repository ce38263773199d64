package api

import (
	"html/template"
	"strings"
)

var pageTmpl = template.Must(template.New("extra").Parse(`
<div class="powercast-panel">
  <p id="status" class="status">connecting...</p>
  <p id="error-message" class="error" hidden></p>
  <form id="upload-form">
    <input type="file" id="file-input" name="file" required>
    <button type="submit" id="submit-button">Predict</button>
  </form>
</div>
<style>
  .powercast-panel { font-family: sans-serif; max-width: 900px; margin: 16px auto; }
  .powercast-panel .error { color: #c0392b; }
</style>
<script>
(function () {
  const uploadID = {{ .UploadID }};
  const uploadVisible = {{ .UploadVisible }};

  function container(id) {
    const el = document.getElementById(id);
    return el ? el.parentElement : null;
  }

  function setVisible(id, visible) {
    const box = container(id);
    if (!box) return;
    const was = box.style.display !== "none";
    box.style.display = visible ? "" : "none";
    const el = document.getElementById(id);
    const inst = el && echarts.getInstanceByDom(el);
    if (visible && !was && inst) inst.resize();
  }

  function showError(msg) {
    const el = document.getElementById("error-message");
    el.textContent = msg;
    el.hidden = false;
  }

  function applyFrame(f) {
    const el = document.getElementById(f.chart);
    if (!el) return;
    const inst = echarts.getInstanceByDom(el);
    if (!inst) return;
    const datasets = f.datasets || [];
    inst.setOption({
      xAxis: [{ data: f.labels || [] }],
      series: datasets.map(function (d) {
        return { name: d.label, data: d.data, lineStyle: { color: d.color }, itemStyle: { color: d.fill, borderColor: d.color } };
      }),
      legend: [{ data: datasets.map(function (d) { return d.label; }) }]
    }, { lazyUpdate: true });
    setVisible(f.chart, f.visible && !f.destroyed);
  }

  function applyStatus(st) {
    let text = "replay: " + st.state + " (" + st.cursor + "/" + st.length + ")";
    if (st.accuracy) {
      text += " RMSE " + st.accuracy.RMSE.toFixed(3) + " MAE " + st.accuracy.MAE.toFixed(3);
    }
    if (st.stop_cause) text += " [" + st.stop_cause + "]";
    document.getElementById("status").textContent = text;
  }

  function connect() {
    const proto = location.protocol === "https:" ? "wss://" : "ws://";
    const sock = new WebSocket(proto + location.host + "/ws");
    sock.onmessage = function (msg) {
      const ev = JSON.parse(msg.data);
      switch (ev.type) {
        case "frame": applyFrame(ev.frame); break;
        case "status":
        case "done": applyStatus(ev.status); break;
        case "error": console.error(ev.message); showError(ev.message); break;
      }
    };
    sock.onclose = function () { setTimeout(connect, 2000); };
  }

  setVisible(uploadID, uploadVisible);

  document.getElementById("upload-form").addEventListener("submit", async function (e) {
    e.preventDefault();
    const input = document.getElementById("file-input");
    if (!input.files.length) return;
    const button = document.getElementById("submit-button");
    const body = new FormData();
    body.append("file", input.files[0]);
    button.disabled = true;
    try {
      const resp = await fetch("/api/upload", { method: "POST", body: body });
      const out = await resp.json();
      if (!resp.ok) {
        const msg = Array.isArray(out.data) && out.data.length ? out.data[0].message : resp.statusText;
        console.error(msg);
        setVisible(uploadID, false);
        alert("Error: " + msg);
        return;
      }
      applyFrame(out.data);
    } catch (err) {
      console.error(err);
      setVisible(uploadID, false);
      alert("Error: " + err.message);
    } finally {
      button.disabled = false;
    }
  });

  connect();
})();
</script>
`))

// pageExtra renders the status line, upload form and websocket script
// appended to the chart page.
func pageExtra(uploadID string, uploadVisible bool) string {
	var b strings.Builder
	_ = pageTmpl.Execute(&b, struct {
		UploadID      string
		UploadVisible bool
	}{uploadID, uploadVisible})
	return b.String()
}
