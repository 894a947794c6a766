package webui

// mapTemplate is the Go html/template for the single-page map client.
const mapTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"
        integrity="sha256-p4NxAoJBhIIN+hmNHrzRCf9tD/miZyoHS5obTRR9BMY=" crossorigin="">
  <style>
    :root {
      --bg: #ffffff;
      --bg-sidebar: #f4f6f8;
      --text: #24292f;
      --text-muted: #6e7781;
      --border: #d8dee4;
      --accent: #2c7fb8;
      --disabled: #9a9a9a;
      --sidebar-width: 320px;
    }
    * { box-sizing: border-box; }
    html, body { height: 100%; margin: 0; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif; color: var(--text); }
    #app { display: flex; height: 100%; }
    #sidebar {
      width: var(--sidebar-width);
      min-width: var(--sidebar-width);
      background: var(--bg-sidebar);
      border-right: 1px solid var(--border);
      display: flex;
      flex-direction: column;
    }
    #sidebar header { padding: 14px 16px 8px; border-bottom: 1px solid var(--border); }
    #sidebar h1 { margin: 0; font-size: 18px; }
    #counts { font-size: 12px; color: var(--text-muted); margin-top: 4px; }
    #search-box { padding: 10px 16px 0; position: relative; }
    #search {
      width: 100%; padding: 6px 8px; font-size: 13px;
      border: 1px solid var(--border); border-radius: 4px; background: var(--bg);
    }
    #search-results {
      position: absolute; left: 16px; right: 16px; z-index: 1100;
      background: var(--bg); border: 1px solid var(--border); border-radius: 4px;
      box-shadow: 0 4px 12px rgba(0,0,0,0.12); max-height: 240px; overflow-y: auto;
    }
    #search-results:empty { display: none; }
    .search-hit { padding: 6px 10px; font-size: 13px; cursor: pointer; }
    .search-hit:hover { background: var(--bg-sidebar); }
    .search-hit .hit-kind { color: var(--text-muted); font-size: 11px; margin-left: 6px; }
    #tree { flex: 1; overflow-y: auto; padding: 10px 8px 10px 16px; }
    .tree-row { display: flex; align-items: center; gap: 6px; padding: 2px 0; font-size: 13px; }
    .tree-row.kind-province { font-weight: 600; }
    .tree-row.kind-barangay { font-size: 12px; }
    .tree-group { margin-top: 10px; font-size: 11px; text-transform: uppercase; letter-spacing: 0.04em; color: var(--text-muted); }
    .tree-label.clickable { cursor: pointer; }
    .tree-label.clickable:hover { color: var(--accent); }
    .tree-label.unplaced { color: var(--text-muted); font-style: italic; }
    #sidebar footer {
      padding: 10px 16px; border-top: 1px solid var(--border);
      display: flex; align-items: center; gap: 12px; font-size: 13px;
    }
    #reset {
      padding: 5px 10px; font-size: 13px; border: 1px solid var(--border);
      border-radius: 4px; background: var(--bg); cursor: pointer;
    }
    #reset:hover { border-color: var(--accent); color: var(--accent); }
    #sidebar footer a { color: var(--accent); text-decoration: none; }
    #map { flex: 1; }
    #status {
      position: fixed; left: 50%; bottom: 24px; transform: translateX(-50%);
      background: #b00020; color: #fff; padding: 8px 16px; border-radius: 4px;
      font-size: 13px; z-index: 2000; box-shadow: 0 4px 12px rgba(0,0,0,0.25);
    }
    #status.hidden { display: none; }
    .legend {
      background: var(--bg); padding: 8px 10px; border-radius: 4px;
      box-shadow: 0 1px 4px rgba(0,0,0,0.2); font-size: 12px; line-height: 1.7;
    }
    .legend .swatch { display: inline-block; width: 10px; height: 10px; border-radius: 50%; margin-right: 6px; }
    .legend .stroke { display: inline-block; width: 14px; height: 3px; margin-right: 6px; vertical-align: middle; }
  </style>
</head>
<body>
  <div id="app">
    <aside id="sidebar">
      <header>
        <h1>{{.Title}}</h1>
        <div id="counts">loading…</div>
      </header>
      <div id="search-box">
        <input id="search" placeholder="Search provinces, cities, barangays" autocomplete="off">
        <div id="search-results"></div>
      </div>
      <div id="tree"></div>
      <footer>
        <button id="reset">Enable all</button>
        <a href="/api/export.geojson" download="uplinkmap.geojson">Export</a>
        <a href="/about">About</a>
      </footer>
    </aside>
    <div id="map"></div>
  </div>
  <div id="status" class="hidden"></div>

  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"
          integrity="sha256-20nQCchB9co0qIjJZRGuk2/Z9VM+kNiyxNV1lvTlZBo=" crossorigin=""></script>
  <script>
    var TILE_URL = {{.TileURL}};
    var TILE_ATTR = {{.TileAttribution}};
    var TILE_MAX_ZOOM = {{.TileMaxZoom}};
    var CENTER = [{{.CenterLat}}, {{.CenterLng}}];
    var ZOOM = {{.Zoom}};

    var COLOR_ENABLED = '#2c7fb8';
    var COLOR_DISABLED = '#9a9a9a';
    var LINE_COLORS = { city: '#1d4e89', barangay: '#56a3d9' };
    var MARKER_RADIUS = { province: 8, city: 6, barangay: 4 };

    var map = L.map('map').setView(CENTER, ZOOM);
    L.tileLayer(TILE_URL, { maxZoom: TILE_MAX_ZOOM, attribution: TILE_ATTR }).addTo(map);

    var legend = L.control({ position: 'bottomright' });
    legend.onAdd = function () {
      var div = L.DomUtil.create('div', 'legend');
      div.innerHTML =
        '<div><span class="swatch" style="background:' + COLOR_ENABLED + '"></span>enabled</div>' +
        '<div><span class="swatch" style="background:' + COLOR_DISABLED + '"></span>disabled</div>' +
        '<div><span class="stroke" style="background:' + LINE_COLORS.city + '"></span>city to province</div>' +
        '<div><span class="stroke" style="background:' + LINE_COLORS.barangay + '"></span>barangay to city</div>';
      return div;
    };
    legend.addTo(map);

    var markers = {};    // "kind:id" -> circle marker
    var nodesByKey = {}; // "kind:id" -> marker node
    var lines = [];      // { kind, childId, layer }
    var cbByKey = {};    // "kind:id" -> checkbox element
    var socket = null;

    function key(kind, id) { return kind + ':' + id; }

    function setStatus(msg) {
      var el = document.getElementById('status');
      if (!msg) { el.classList.add('hidden'); el.textContent = ''; return; }
      el.textContent = msg;
      el.classList.remove('hidden');
    }

    function enabledFor(flags, kind, id) {
      var m = kind === 'province' ? flags.provinces : kind === 'city' ? flags.cities : flags.barangays;
      if (!m) { return true; }
      var v = m[id];
      return v === undefined ? true : v;
    }

    function applyState(flags, vis) {
      Object.keys(markers).forEach(function (k) {
        var n = nodesByKey[k];
        var on = enabledFor(flags, n.kind, n.id);
        var color = on ? COLOR_ENABLED : COLOR_DISABLED;
        markers[k].setStyle({ color: color, fillColor: color });
      });
      Object.keys(cbByKey).forEach(function (k) {
        var sep = k.indexOf(':');
        cbByKey[k].checked = enabledFor(flags, k.slice(0, sep), k.slice(sep + 1));
      });
      lines.forEach(function (ln) {
        var m = ln.kind === 'city' ? vis.city_line : vis.barangay_line;
        var show = !!(m && m[ln.childId]);
        if (show && !map.hasLayer(ln.layer)) { ln.layer.addTo(map); }
        if (!show && map.hasLayer(ln.layer)) { map.removeLayer(ln.layer); }
      });
    }

    function addMarker(n) {
      var k = key(n.kind, n.id);
      nodesByKey[k] = n;
      var layer = L.circleMarker([n.coords.lat, n.coords.lng], {
        radius: MARKER_RADIUS[n.kind] || 5,
        color: COLOR_ENABLED,
        fillColor: COLOR_ENABLED,
        fillOpacity: 0.85,
        weight: 1
      }).addTo(map);
      layer.bindTooltip(n.name + ' (' + n.kind + ')');
      layer.on('click', function () {
        map.setView([n.coords.lat, n.coords.lng], Math.max(map.getZoom(), 12));
      });
      markers[k] = layer;
    }

    function addLine(ln) {
      var layer = L.polyline(
        [[ln.from.lat, ln.from.lng], [ln.to.lat, ln.to.lng]],
        { color: LINE_COLORS[ln.kind] || LINE_COLORS.city, weight: ln.kind === 'city' ? 2 : 1.5, opacity: 0.8 }
      ).addTo(map);
      lines.push({ kind: ln.kind, childId: ln.child_id, layer: layer });
    }

    function sendToggle(kind, id, enabled) {
      if (socket && socket.readyState === WebSocket.OPEN) {
        socket.send(JSON.stringify({ type: 'toggle', kind: kind, id: id, enabled: enabled }));
        return;
      }
      fetch('/api/nodes/' + encodeURIComponent(kind) + '/' + encodeURIComponent(id) + '/enabled', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify({ enabled: enabled })
      }).then(function (resp) {
        if (!resp.ok) { throw new Error('HTTP ' + resp.status); }
        return fetch('/api/visibility');
      }).then(function (resp) { return resp.json(); })
        .then(function (data) { applyState(data.flags, data.visibility); })
        .catch(function (err) { setStatus('Toggle failed: ' + err.message); });
    }

    function zoomTo(kind, id) {
      var n = nodesByKey[key(kind, id)];
      if (n) { map.setView([n.coords.lat, n.coords.lng], 12); }
    }

    function treeItem(node, depth) {
      var wrap = document.createElement('div');
      var row = document.createElement('div');
      row.className = 'tree-row kind-' + node.kind;
      row.style.paddingLeft = (depth * 16) + 'px';

      var cb = document.createElement('input');
      cb.type = 'checkbox';
      cb.checked = true;
      cb.addEventListener('change', function () { sendToggle(node.kind, node.id, cb.checked); });
      cbByKey[key(node.kind, node.id)] = cb;

      var label = document.createElement('span');
      label.className = 'tree-label';
      label.textContent = node.name;
      if (node.has_coords) {
        label.classList.add('clickable');
        label.addEventListener('click', function () { zoomTo(node.kind, node.id); });
      } else {
        label.classList.add('unplaced');
        label.title = 'no coordinates';
      }

      row.appendChild(cb);
      row.appendChild(label);
      wrap.appendChild(row);
      (node.children || []).forEach(function (child) {
        wrap.appendChild(treeItem(child, depth + 1));
      });
      return wrap;
    }

    function groupHeader(text) {
      var el = document.createElement('div');
      el.className = 'tree-group';
      el.textContent = text;
      return el;
    }

    function buildTree(tree) {
      var root = document.getElementById('tree');
      root.innerHTML = '';
      (tree.provinces || []).forEach(function (p) { root.appendChild(treeItem(p, 0)); });
      if (tree.unassigned_cities && tree.unassigned_cities.length) {
        root.appendChild(groupHeader('Unassigned cities'));
        tree.unassigned_cities.forEach(function (c) { root.appendChild(treeItem(c, 0)); });
      }
      if (tree.unassigned_barangays && tree.unassigned_barangays.length) {
        root.appendChild(groupHeader('Unassigned barangays'));
        tree.unassigned_barangays.forEach(function (b) { root.appendChild(treeItem(b, 0)); });
      }
    }

    function connect() {
      var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
      socket = new WebSocket(proto + location.host + '/ws');
      socket.onmessage = function (ev) {
        var msg = JSON.parse(ev.data);
        if (msg.type === 'visibility') {
          applyState(msg.flags, msg.visibility);
        } else if (msg.type === 'error') {
          setStatus(msg.error);
        }
      };
      socket.onclose = function () { setTimeout(connect, 2000); };
    }

    var searchTimer = null;
    document.getElementById('search').addEventListener('input', function (ev) {
      clearTimeout(searchTimer);
      var q = ev.target.value.trim();
      var box = document.getElementById('search-results');
      if (!q) { box.innerHTML = ''; return; }
      searchTimer = setTimeout(function () {
        fetch('/api/search?q=' + encodeURIComponent(q) + '&limit=8')
          .then(function (resp) { return resp.json(); })
          .then(function (data) {
            box.innerHTML = '';
            (data.results || []).forEach(function (n) {
              var row = document.createElement('div');
              row.className = 'search-hit';
              row.textContent = n.name;
              var kind = document.createElement('span');
              kind.className = 'hit-kind';
              kind.textContent = n.kind;
              row.appendChild(kind);
              row.addEventListener('click', function () {
                if (n.coords) { map.setView([n.coords.lat, n.coords.lng], 12); }
                box.innerHTML = '';
                document.getElementById('search').value = '';
              });
              box.appendChild(row);
            });
          })
          .catch(function () {});
      }, 150);
    });

    document.getElementById('reset').addEventListener('click', function () {
      if (socket && socket.readyState === WebSocket.OPEN) {
        socket.send(JSON.stringify({ type: 'reset' }));
        return;
      }
      fetch('/api/reset', { method: 'POST' })
        .then(function (resp) { return resp.json(); })
        .then(function (data) { applyState(data.flags, data.visibility); })
        .catch(function (err) { setStatus('Reset failed: ' + err.message); });
    });

    fetch('/api/snapshot')
      .then(function (resp) {
        if (!resp.ok) { throw new Error('HTTP ' + resp.status); }
        return resp.json();
      })
      .then(function (snap) {
        document.getElementById('counts').textContent =
          snap.counts.provinces + ' provinces, ' +
          snap.counts.cities + ' cities, ' +
          snap.counts.barangays + ' barangays';
        snap.markers.forEach(addMarker);
        snap.links.forEach(addLine);
        buildTree(snap.tree);
        applyState(snap.flags, snap.visibility);
        connect();
      })
      .catch(function (err) {
        document.getElementById('counts').textContent = 'no data';
        setStatus('Failed to load dataset: ' + err.message);
      });
  </script>
</body>
</html>`

// aboutTemplate wraps the rendered about markdown.
const aboutTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>
    body {
      max-width: 720px; margin: 0 auto; padding: 32px 20px 64px;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif;
      color: #24292f; line-height: 1.6;
    }
    h1, h2 { border-bottom: 1px solid #d8dee4; padding-bottom: 6px; }
    code { background: #f4f6f8; padding: 2px 5px; border-radius: 3px; font-size: 0.9em; }
    pre code { display: block; padding: 12px; overflow-x: auto; }
    table { border-collapse: collapse; }
    th, td { border: 1px solid #d8dee4; padding: 6px 10px; }
    a { color: #2c7fb8; }
  </style>
</head>
<body>
  <p><a href="/">&larr; back to the map</a></p>
  {{.Content}}
</body>
</html>`
